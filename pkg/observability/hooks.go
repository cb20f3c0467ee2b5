// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; binaries decide what
// to do with them. Nothing here imports a metrics or tracing backend.
//
// # Architecture
//
// Each event category has an interface and a no-op implementation. Hooks
// are registered once at startup and read by the pipeline, the cache layer
// and the HTTP API:
//
//	func main() {
//	    observability.SetClimbHooks(&promClimbHooks{})
//	    observability.SetCacheHooks(&promCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks around the work they do:
//
//	observability.Climb().OnClimbStart(ctx, len(samples))
//	// ... step until exhausted ...
//	observability.Climb().OnClimbComplete(ctx, generations, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from pedigree loading and cone resolution.
type AnalysisHooks interface {
	// OnPedigreeLoaded fires after a pedigree was parsed and validated.
	OnPedigreeLoaded(ctx context.Context, individuals int, duration time.Duration, err error)

	OnConesStart(ctx context.Context, groupSize int)
	OnConesComplete(ctx context.Context, commonAncestors int, duration time.Duration, err error)
}

// =============================================================================
// Climb Hooks
// =============================================================================

// ClimbHooks receives events from weight propagation runs.
type ClimbHooks interface {
	OnClimbStart(ctx context.Context, samples int)

	// OnClimbStep fires after every advancing step.
	OnClimbStep(ctx context.Context, generation, frontier int)

	OnClimbComplete(ctx context.Context, generations int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType is "cones" or
// "climb".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events for requests served by the HTTP API.
type HTTPHooks interface {
	// OnRequest fires before routing, with the raw request path.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse fires after the handler, with the matched route pattern
	// (e.g. "/individuals/{id}") so IDs do not explode cardinality.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnPedigreeLoaded(context.Context, int, time.Duration, error) {}
func (NoopAnalysisHooks) OnConesStart(context.Context, int)                           {}
func (NoopAnalysisHooks) OnConesComplete(context.Context, int, time.Duration, error)  {}

// NoopClimbHooks is a no-op implementation of ClimbHooks.
type NoopClimbHooks struct{}

func (NoopClimbHooks) OnClimbStart(context.Context, int)                          {}
func (NoopClimbHooks) OnClimbStep(context.Context, int, int)                      {}
func (NoopClimbHooks) OnClimbComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	climbHooks    ClimbHooks    = NoopClimbHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers analysis hooks. A nil h is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetClimbHooks registers climb hooks. A nil h is ignored.
func SetClimbHooks(h ClimbHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		climbHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Climb returns the registered climb hooks.
func Climb() ClimbHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return climbHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults. Tests use it.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	climbHooks = NoopClimbHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
