package osv

import (
	"context"
	"log/slog"
)

// Cache persists lookup results across scans. Implementations must be
// safe for concurrent use. A nil cache disables caching.
type Cache interface {
	Get(key string) ([]Vulnerability, bool)
	Put(key string, vulns []Vulnerability)
}

// Resolver looks up and normalizes advisories for unique dependencies.
// Lookup failures are deliberately silent: they are logged and yield an
// empty result, so one unreachable package never blocks a scan.
type Resolver struct {
	Client *Client
	Cache  Cache
}

// NewResolver wraps an OSV client. cache may be nil.
func NewResolver(client *Client, cache Cache) *Resolver {
	return &Resolver{Client: client, Cache: cache}
}

// Resolve returns the normalized vulnerabilities affecting one package,
// attributed to it. The result is empty both when the package is clean
// and when the lookup failed.
func (r *Resolver) Resolve(ctx context.Context, name, version, ecosystem string) []Vulnerability {
	key := ecosystem + ":" + name + ":" + version
	if r.Cache != nil {
		if vulns, ok := r.Cache.Get(key); ok {
			return vulns
		}
	}

	raw, err := r.Client.Query(ctx, name, version, ecosystem)
	if err != nil {
		slog.Warn("vulnerability lookup failed",
			"package", name, "version", version, "ecosystem", ecosystem, "error", err)
		return nil
	}

	vulns := make([]Vulnerability, 0, len(raw))
	for _, rv := range raw {
		v := normalize(rv)
		v.Package = name
		v.Version = version
		v.Ecosystem = ecosystem
		vulns = append(vulns, v)
	}

	if r.Cache != nil {
		r.Cache.Put(key, vulns)
	}
	return vulns
}
