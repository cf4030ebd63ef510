package purpleair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ppatel122/AirQualityDashboard/internal/feeds"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

const defaultBaseURL = "https://api.purpleair.com"

// Payload is the columnar members response of the sensor-network API.
type Payload struct {
	Fields        []string `json:"fields"`
	Data          [][]any  `json:"data"`
	DataTimeStamp int64    `json:"data_time_stamp"`
}

// Client fetches microsensor readings for a sensor group.
type Client struct {
	baseURL string
	apiKey  string
	groupID string
	fields  []string
	client  *http.Client
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient constructs a microsensor feed client.
func NewClient(apiKey, groupID string, fields []string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("purpleair: empty api key")
	}
	if groupID == "" {
		return nil, errors.New("purpleair: empty group id")
	}
	if len(fields) == 0 {
		return nil, errors.New("purpleair: empty field list")
	}
	client := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		groupID: groupID,
		fields:  fields,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchMembers retrieves the raw columnar payload for the configured group.
func (c *Client) FetchMembers(ctx context.Context) (Payload, error) {
	endpoint := fmt.Sprintf("%s/v1/groups/%s/members?fields=%s",
		c.baseURL, url.PathEscape(c.groupID), url.QueryEscape(strings.Join(c.fields, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: purpleair: %v", feeds.ErrFetchFailure, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: purpleair: %v", feeds.ErrFetchFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Payload{}, fmt.Errorf("%w: purpleair: status %d", feeds.ErrFetchFailure, resp.StatusCode)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Payload{}, fmt.Errorf("%w: purpleair: decode: %v", feeds.ErrFetchFailure, err)
	}
	return payload, nil
}

// Fetch retrieves and normalizes the group's current readings. The second
// return value counts rows skipped as malformed.
func (c *Client) Fetch(ctx context.Context) ([]sensors.Microsensor, int, error) {
	payload, err := c.FetchMembers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return Normalize(payload)
}
