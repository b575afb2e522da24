// Package observability lets the binary attach metrics to the engine
// without the engine depending on a metrics backend.
//
// Libraries emit events through the registered hooks; by default every hook
// is a no-op. The CLI's serve command registers a [Prometheus] collector at
// startup:
//
//	prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	observability.SetAlignHooks(prom)
//	observability.SetCacheHooks(prom)
//	observability.SetServerHooks(prom)
//
// Engine code then reports through the getters:
//
//	observability.Align().OnAlignComplete(ctx, g1, g2, matched, degenerate, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// AlignHooks receives events from the alignment engine.
type AlignHooks interface {
	// OnAlignComplete records one pairwise alignment.
	OnAlignComplete(ctx context.Context, g1, g2 string, matched int, degenerate bool, duration time.Duration, err error)

	// OnMergeComplete records the merge of the given number of input graphs
	// into one graph with the given node count.
	OnMergeComplete(ctx context.Context, graphs, nodes int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnResponse records a served request. route is the matched route
	// pattern, not the raw path.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopAlignHooks discards alignment events.
type NoopAlignHooks struct{}

func (NoopAlignHooks) OnAlignComplete(context.Context, string, string, int, bool, time.Duration, error) {
}
func (NoopAlignHooks) OnMergeComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks discards server events.
type NoopServerHooks struct{}

func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	alignHooks  AlignHooks  = NoopAlignHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetAlignHooks registers alignment hooks. nil is ignored.
func SetAlignHooks(h AlignHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		alignHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers server hooks. nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Align returns the registered alignment hooks.
func Align() AlignHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return alignHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	alignHooks = NoopAlignHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
