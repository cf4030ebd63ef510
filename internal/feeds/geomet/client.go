package geomet

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

const (
	defaultBaseURL    = "https://api.weather.gc.ca"
	observationsItems = "/collections/aqhi-observations-realtime/items"
)

// FeatureCollection is the GeoJSON response of the station observation feed.
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is a single station observation.
type Feature struct {
	ID       string `json:"id"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ObservationDatetime string   `json:"observation_datetime"`
		LocationNameEn      string   `json:"location_name_en"`
		AQHI                *float64 `json:"aqhi"`
	} `json:"properties"`
}

// Client fetches government station observations within a bounding box.
type Client struct {
	baseURL string
	bbox    string
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

// NewClient constructs a station feed client.
func NewClient(bbox string, opts ...ClientOption) (*Client, error) {
	if bbox == "" {
		return nil, errors.New("geomet: empty bounding box")
	}
	client := &Client{
		baseURL: defaultBaseURL,
		bbox:    bbox,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchObservations retrieves the latest observation per station inside the
// configured bounding box.
func (c *Client) FetchObservations(ctx context.Context) (FeatureCollection, error) {
	endpoint := fmt.Sprintf("%s%s?bbox=%s&offset=0&sortby=-latest&latest=true&f=json",
		c.baseURL, observationsItems, url.QueryEscape(c.bbox))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FeatureCollection{}, fmt.Errorf("%w: geomet: %v", feeds.ErrFetchFailure, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return FeatureCollection{}, fmt.Errorf("%w: geomet: %v", feeds.ErrFetchFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FeatureCollection{}, fmt.Errorf("%w: geomet: status %d", feeds.ErrFetchFailure, resp.StatusCode)
	}

	var collection FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return FeatureCollection{}, fmt.Errorf("%w: geomet: decode: %v", feeds.ErrFetchFailure, err)
	}
	return collection, nil
}

// Fetch retrieves and normalizes station observations. The second return
// value counts features skipped as malformed.
func (c *Client) Fetch(ctx context.Context) ([]sensors.StationReading, int, error) {
	collection, err := c.FetchObservations(ctx)
	if err != nil {
		return nil, 0, err
	}
	readings, skipped := Normalize(collection, time.Now().UTC())
	return readings, skipped, nil
}
