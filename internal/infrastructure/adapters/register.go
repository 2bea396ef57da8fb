package adapters

import (
	"time"

	"github.com/bg1eym/atlas-data/internal/adapter"
)

// RegisterAll wires the built-in adapters into the registry with a shared
// HTTP client. The allowlist applies to the HTML page adapter only; a
// non-positive timeout falls back to the 20s default.
func RegisterAll(r *adapter.Registry, allowlist []string, timeout time.Duration) {
	client := newHTTPClient(timeout)
	r.Register(NewFeedAdapter(client))
	r.Register(NewPageAdapter(client, allowlist))
	r.Register(NewReleaseAdapter(client))
}
