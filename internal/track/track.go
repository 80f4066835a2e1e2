// Package track is the event ingest pipeline: it normalizes an incoming
// beacon, resolves its owner configuration, and fans the event out to
// every configured server-side analytics destination.
package track

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/biolink/internal/dedup"
	"github.com/dmitrymomot/biolink/internal/event"
	"github.com/dmitrymomot/biolink/internal/owner"
	"github.com/dmitrymomot/biolink/internal/provider"
	"github.com/dmitrymomot/biolink/internal/store"
)

// maxEventIDLength caps client-supplied ids at UUID string size so a
// hostile beacon cannot inflate provider payloads.
const maxEventIDLength = 36

// Request is the raw beacon body as received from the client:
// {name, params, event_id, url, user_data}.
type Request struct {
	Name     string         `json:"name"`
	Params   map[string]any `json:"params"`
	EventID  string         `json:"event_id"`
	PageURL  string         `json:"url"`
	UserData event.UserData `json:"user_data"`
}

// Receipt summarizes one ingest for the handler and the logs. The client
// response is built from EventID alone; the rest is operator-facing.
type Receipt struct {
	EventID      string
	Deduplicated bool
	Dispatched   []provider.Result
}

// Service wires owner resolution, deduplication, and the provider
// adapters into a single ingest entry point.
type Service struct {
	resolver *owner.Resolver
	deduper  dedup.Deduper
	meta     *provider.Meta
	ga4      *provider.GA4
	tiktok   *provider.TikTok
	log      *slog.Logger
}

func NewService(resolver *owner.Resolver, deduper dedup.Deduper, meta *provider.Meta, ga4 *provider.GA4, tiktok *provider.TikTok, log *slog.Logger) *Service {
	if deduper == nil {
		deduper = dedup.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		resolver: resolver,
		deduper:  deduper,
		meta:     meta,
		ga4:      ga4,
		tiktok:   tiktok,
		log:      log,
	}
}

// Ingest processes one beacon end to end. It always returns a Receipt:
// provider failures are logged per destination, deduplicated events are
// acknowledged without dispatch, and nothing here surfaces as a client
// error. clientIP and userAgent come from the HTTP request, not the body.
func (s *Service) Ingest(ctx context.Context, req Request, clientIP, userAgent string) Receipt {
	ev := normalize(req)
	own := s.resolver.Resolve(ctx, ev.PageURL)

	if s.deduper.Seen(ctx, ev.ID) {
		s.log.InfoContext(ctx, "duplicate event suppressed",
			slog.String("event_id", ev.ID),
			slog.String("owner", own.Slug))
		return Receipt{EventID: ev.ID, Deduplicated: true}
	}

	user := req.UserData.Hash(clientIP, userAgent)
	results := s.dispatch(ctx, own.Config.PixelsAdvanced, ev, user)

	for _, res := range results {
		if res.Err != nil {
			s.log.ErrorContext(ctx, "provider dispatch failed",
				slog.String("provider", res.Provider),
				slog.String("target", res.Target),
				slog.String("owner", own.Slug),
				slog.String("event_id", ev.ID),
				slog.Int("status", res.StatusCode),
				slog.Duration("duration", res.Duration),
				slog.Any("error", res.Err))
		} else {
			s.log.DebugContext(ctx, "provider dispatch ok",
				slog.String("provider", res.Provider),
				slog.String("target", res.Target),
				slog.String("event_id", ev.ID),
				slog.Duration("duration", res.Duration))
		}
	}

	return Receipt{EventID: ev.ID, Dispatched: results}
}

// dispatch sends the event to every valid credential concurrently and
// waits for all calls to settle. One slow or failing destination never
// short-circuits the others.
func (s *Service) dispatch(ctx context.Context, pixels store.PixelsAdvanced, ev event.Event, user event.HashedUserData) []provider.Result {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []provider.Result
	)
	collect := func(res provider.Result) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}

	for _, cred := range pixels.Facebook {
		if !cred.Valid() {
			continue
		}
		cred := cred
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(s.meta.Send(ctx, cred, ev, user))
		}()
	}
	for _, cred := range pixels.GA4 {
		if !cred.Valid() {
			continue
		}
		cred := cred
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(s.ga4.Send(ctx, cred, ev, user))
		}()
	}
	for _, cred := range pixels.TikTok {
		if !cred.Valid() {
			continue
		}
		cred := cred
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(s.tiktok.Send(ctx, cred, ev, user))
		}()
	}

	wg.Wait()
	return results
}

// normalize applies ingest defaults so downstream code never sees a
// half-empty event.
func normalize(req Request) event.Event {
	name := req.Name
	if name == "" {
		name = "Event"
	}
	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	id := req.EventID
	if len(id) > maxEventIDLength {
		id = id[:maxEventIDLength]
	}
	if id == "" {
		id = uuid.NewString()
	}
	return event.Event{
		Name:    name,
		Params:  params,
		ID:      id,
		PageURL: req.PageURL,
		Time:    time.Now(),
	}
}
