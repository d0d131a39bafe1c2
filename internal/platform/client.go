// Package platform consumes the external room platform API: room creation and
// the cross-domain redirect URLs that carry a signed access token.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Source identifies which calling context produced a redirect; it selects the
// destination hostname.
type Source string

const (
	SourceVoceSpace Source = "vocespace"
	SourceMeeting   Source = "meeting"
)

// Room is the platform's view of a created meeting room.
type Room struct {
	Name            string `json:"name"`
	SID             string `json:"sid,omitempty"`
	MaxParticipants int    `json:"max_participants,omitempty"`
}

// Client talks to the room platform API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type createRoomRequest struct {
	Name            string `json:"name"`
	MaxParticipants int    `json:"max_participants,omitempty"`
}

// CreateRoom asks the platform to create (or return) a room with the given name.
func (c *Client) CreateRoom(ctx context.Context, name string, maxParticipants int) (*Room, error) {
	jsonBody, err := json.Marshal(createRoomRequest{Name: name, MaxParticipants: maxParticipants})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/rooms", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("platform error (status %d): %s", resp.StatusCode, string(body))
	}

	var room Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &room, nil
}

// Redirector builds the cross-domain hand-off URLs. Two fixed hostnames are
// selected by the source flag.
type Redirector struct {
	VoceSpaceHost string
	MeetingHost   string
}

// URL returns the connection-details URL for the given source, embedding the
// signed token verbatim as a query parameter.
func (r Redirector) URL(source Source, tok string) string {
	host := r.VoceSpaceHost
	if source == SourceMeeting {
		host = r.MeetingHost
	}

	q := url.Values{}
	q.Set("auth", string(source))
	q.Set("token", tok)

	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/api/connection-details",
		RawQuery: q.Encode(),
	}
	return u.String()
}
