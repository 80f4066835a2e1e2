// Package owner resolves which tenant or user configuration a tracked
// event belongs to, based on the page URL the event was emitted from.
package owner

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrymomot/biolink/internal/store"
)

// Owner is a resolved configuration record plus its identity, used for
// dispatch and operator-facing logs.
type Owner struct {
	// Kind is "user", "tenant", or "default".
	Kind string
	Slug string

	Config *store.Config
}

// Resolver maps page URLs to owner configurations via the store.
type Resolver struct {
	store store.ConfigStore
}

func NewResolver(s store.ConfigStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve finds the owner of pageURL. It never fails: ambiguous or unknown
// paths fall through user → tenant → default, because tracking must not
// error out a legitimate click over a murky referrer.
//
// Path shapes, in resolution order:
//
//	/_u/{user}          direct user lookup
//	/{tenant}/{user}    user lookup, only if the user belongs to {tenant}
//	/{tenant}/...       tenant lookup
//	anything else       default tenant
func (r *Resolver) Resolve(ctx context.Context, pageURL string) Owner {
	seg := pathSegments(pageURL)

	if len(seg) >= 2 && seg[0] == "_u" {
		if cfg, err := r.store.GetUser(ctx, seg[1]); err == nil {
			return Owner{Kind: "user", Slug: seg[1], Config: cfg}
		}
	} else if len(seg) >= 2 {
		// The ownership check keeps one tenant's URL prefix from leaking
		// another tenant's user settings.
		if cfg, err := r.store.GetUser(ctx, seg[1]); err == nil && cfg.Tenant == seg[0] {
			return Owner{Kind: "user", Slug: seg[1], Config: cfg}
		}
	}

	if len(seg) >= 1 {
		if cfg, err := r.store.GetTenant(ctx, seg[0]); err == nil {
			return Owner{Kind: "tenant", Slug: seg[0], Config: cfg}
		}
	}

	if cfg, err := r.store.GetTenant(ctx, store.DefaultTenant); err == nil {
		return Owner{Kind: "default", Slug: store.DefaultTenant, Config: cfg}
	}

	// Even a broken store must not break tracking.
	return Owner{Kind: "default", Slug: store.DefaultTenant, Config: store.DefaultConfig()}
}

// pathSegments extracts non-empty path segments from a full URL or a bare
// path. Unparsable input yields no segments.
func pathSegments(pageURL string) []string {
	path := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		path = u.Path
	}

	var seg []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			seg = append(seg, part)
		}
	}
	return seg
}
