package provider

import (
	"context"
	"net/url"
	"time"

	"github.com/dmitrymomot/biolink/internal/event"
	"github.com/dmitrymomot/biolink/internal/store"
)

const metaDefaultBaseURL = "https://graph.facebook.com/v20.0"

// Meta sends events to the Meta Conversions API.
type Meta struct {
	client  *Client
	baseURL string
}

// NewMeta creates the Meta CAPI adapter. baseURL overrides the Graph API
// endpoint; pass "" for production.
func NewMeta(client *Client, baseURL string) *Meta {
	if baseURL == "" {
		baseURL = metaDefaultBaseURL
	}
	return &Meta{client: client, baseURL: baseURL}
}

type metaEvent struct {
	EventName      string               `json:"event_name"`
	EventTime      int64                `json:"event_time"`
	EventID        string               `json:"event_id"`
	ActionSource   string               `json:"action_source"`
	EventSourceURL string               `json:"event_source_url"`
	UserData       event.HashedUserData `json:"user_data"`
	CustomData     map[string]any       `json:"custom_data,omitempty"`
}

type metaPayload struct {
	Data []metaEvent `json:"data"`
	// TestEventCode routes events to the Test Events tool without
	// polluting production reporting. Sent only when configured.
	TestEventCode string `json:"test_event_code,omitempty"`
}

// Send posts one event to the pixel's events endpoint. Failures are
// captured in the Result, never returned.
func (m *Meta) Send(ctx context.Context, cred store.FacebookCredential, ev event.Event, user event.HashedUserData) Result {
	payload := metaPayload{
		Data: []metaEvent{{
			EventName:      ev.Name,
			EventTime:      ev.Time.Unix(),
			EventID:        ev.ID,
			ActionSource:   "website",
			EventSourceURL: ev.PageURL,
			UserData:       user,
			CustomData:     ev.Params,
		}},
		TestEventCode: cred.TestEventCode,
	}

	endpoint := m.baseURL + "/" + url.PathEscape(cred.PixelID) + "/events?access_token=" + url.QueryEscape(cred.AccessToken)

	start := time.Now()
	status, err := m.client.postJSON(ctx, endpoint, nil, payload)
	return Result{
		Provider:   "meta",
		Target:     cred.PixelID,
		StatusCode: status,
		Duration:   time.Since(start),
		Err:        err,
	}
}
