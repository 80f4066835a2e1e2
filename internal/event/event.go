// Package event defines the canonical tracked-event model shared by the
// ingest pipeline and the provider adapters.
package event

import (
	"time"

	"github.com/dmitrymomot/biolink/pkg/pii"
)

// Event is one logical user action, request-scoped and never persisted.
// ID is the deduplication key shared verbatim across every fan-out
// destination so each provider can collapse duplicate client+server
// signals for the same action.
type Event struct {
	Name    string
	Params  map[string]any
	ID      string
	PageURL string
	Time    time.Time
}

// UserData carries the raw identity fields from the client beacon.
// FBP and FBC are opaque browser-set identifiers; the rest is PII that
// must be hashed before leaving the process.
type UserData struct {
	FBP        string `json:"fbp,omitempty"`
	FBC        string `json:"fbc,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// HashedUserData is the wire shape of match keys for Conversions APIs.
// Built fresh per request; empty fields are omitted rather than sent as
// hashes of the empty string.
type HashedUserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	FBP             string `json:"fbp,omitempty"`
	FBC             string `json:"fbc,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
	Email           string `json:"em,omitempty"`
	Phone           string `json:"ph,omitempty"`
}

// Hash builds HashedUserData from the raw beacon fields plus request
// metadata. IP and user agent come from the request, never from the
// client-supplied JSON, so they cannot be spoofed by the payload.
func (u UserData) Hash(clientIP, userAgent string) HashedUserData {
	return HashedUserData{
		ClientIPAddress: clientIP,
		ClientUserAgent: userAgent,
		FBP:             u.FBP,
		FBC:             u.FBC,
		ExternalID:      pii.NormalizeAndHash(u.ExternalID),
		Email:           pii.NormalizeAndHash(u.Email),
		Phone:           pii.NormalizeAndHash(u.Phone),
	}
}

// ParamsWithID returns a copy of the event params with the event id
// merged in, for providers that carry the id inside the parameter map.
func (e Event) ParamsWithID() map[string]any {
	merged := make(map[string]any, len(e.Params)+1)
	for k, v := range e.Params {
		merged[k] = v
	}
	merged["event_id"] = e.ID
	return merged
}
