package provider

import (
	"context"
	"time"

	"github.com/dmitrymomot/biolink/internal/event"
	"github.com/dmitrymomot/biolink/internal/store"
)

const tiktokDefaultBaseURL = "https://business-api.tiktok.com"

// TikTok sends events to the TikTok Events API.
type TikTok struct {
	client  *Client
	baseURL string
}

// NewTikTok creates the TikTok Events API adapter. baseURL overrides the
// business API endpoint; pass "" for production.
func NewTikTok(client *Client, baseURL string) *TikTok {
	if baseURL == "" {
		baseURL = tiktokDefaultBaseURL
	}
	return &TikTok{client: client, baseURL: baseURL}
}

type tiktokContext struct {
	Page struct {
		URL string `json:"url"`
	} `json:"page"`
	User struct {
		UserAgent string `json:"user_agent"`
	} `json:"user"`
}

type tiktokPayload struct {
	PixelCode  string         `json:"pixel_code"`
	Event      string         `json:"event"`
	Timestamp  string         `json:"timestamp"`
	Context    tiktokContext  `json:"context"`
	Properties map[string]any `json:"properties"`
}

// Send posts one event to the pixel track endpoint, authenticating with
// the Access-Token header.
func (t *TikTok) Send(ctx context.Context, cred store.TikTokCredential, ev event.Event, user event.HashedUserData) Result {
	payload := tiktokPayload{
		PixelCode:  cred.PixelCode,
		Event:      ev.Name,
		Timestamp:  ev.Time.UTC().Format(time.RFC3339),
		Properties: ev.ParamsWithID(),
	}
	payload.Context.Page.URL = ev.PageURL
	payload.Context.User.UserAgent = user.ClientUserAgent

	start := time.Now()
	status, err := t.client.postJSON(ctx, t.baseURL+"/open_api/v1.3/pixel/track/", map[string]string{
		"Access-Token": cred.AccessToken,
	}, payload)
	return Result{
		Provider:   "tiktok",
		Target:     cred.PixelCode,
		StatusCode: status,
		Duration:   time.Since(start),
		Err:        err,
	}
}
