package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type emailPayload struct {
	SenderAddress string       `json:"senderAddress"`
	Recipients    recipients   `json:"recipients"`
	Content       emailContent `json:"content"`
}

type recipients struct {
	To []recipient `json:"to"`
}

type recipient struct {
	Address string `json:"address"`
}

type emailContent struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plainText"`
}

// EmailChannel sends messages through an HTTP email provider endpoint.
type EmailChannel struct {
	endpoint  string
	accessKey string
	sender    string
	client    *http.Client
}

// EmailOption configures the email channel.
type EmailOption func(*EmailChannel)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) EmailOption {
	return func(ch *EmailChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// NewEmailChannel constructs an email channel.
func NewEmailChannel(endpoint, accessKey, sender string, opts ...EmailOption) (*EmailChannel, error) {
	if endpoint == "" {
		return nil, errors.New("email channel: empty endpoint")
	}
	if sender == "" {
		return nil, errors.New("email channel: empty sender address")
	}
	channel := &EmailChannel{
		endpoint:  strings.TrimRight(endpoint, "/"),
		accessKey: accessKey,
		sender:    sender,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Send posts the message to the provider.
func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	if c == nil || c.endpoint == "" {
		return errors.New("email channel: empty endpoint")
	}
	if msg.To == "" {
		return fmt.Errorf("%w: empty recipient", ErrSendFailed)
	}
	payload := emailPayload{
		SenderAddress: c.sender,
		Recipients:    recipients{To: []recipient{{Address: msg.To}}},
		Content:       emailContent{Subject: msg.Subject, PlainText: msg.Body},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: non-2xx response %d", ErrSendFailed, resp.StatusCode)
	}
	return nil
}
