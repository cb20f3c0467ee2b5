package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/observability"
)

// logHooks writes pipeline events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetAnalysisHooks(h)
	observability.SetClimbHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnPedigreeLoaded(_ context.Context, individuals int, d time.Duration, err error) {
	h.logger.Debug("event: pedigree loaded", "individuals", individuals, "duration", d, "error", err)
}

func (h *logHooks) OnConesStart(_ context.Context, groupSize int) {
	h.logger.Debug("event: cones start", "group", groupSize)
}

func (h *logHooks) OnConesComplete(_ context.Context, commonAncestors int, d time.Duration, err error) {
	h.logger.Debug("event: cones complete", "common_ancestors", commonAncestors, "duration", d, "error", err)
}

func (h *logHooks) OnClimbStart(_ context.Context, samples int) {
	h.logger.Debug("event: climb start", "samples", samples)
}

func (h *logHooks) OnClimbStep(_ context.Context, generation, frontier int) {
	h.logger.Debug("event: climb step", "generation", generation, "frontier", frontier)
}

func (h *logHooks) OnClimbComplete(_ context.Context, generations int, d time.Duration, err error) {
	h.logger.Debug("event: climb complete", "generations", generations, "duration", d, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("event: cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("event: cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("event: cache set", "type", keyType, "bytes", size)
}
