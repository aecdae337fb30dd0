package measure

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMeasure keeps the metrics in memory. It is safe for concurrent use.
type DefaultMeasure struct {
	stages map[string]Metric
	mu     sync.RWMutex
}

// NewDefaultMeasure creates an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		stages: make(map[string]Metric),
	}
}

// AddMetric creates the metric of a stage. An existing metric is kept.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.stages[name]; ok {
		return mt
	}
	mt := &DefaultMetric{}
	m.stages[name] = mt

	return mt
}

// GetMetric returns the metric of a stage, nil if there is none.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stages[name]
}

// AllMetrics returns a copy of the metrics.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.stages)
}

// Report logs one line per stage, sorted by stage label.
func Report(logger *zerolog.Logger, msr Measure) {
	all := msr.AllMetrics()
	for _, name := range slices.Sorted(maps.Keys(all)) {
		mt := all[name]
		event := logger.Info().Str("stage", name).Int64("elements", mt.Total())
		if avg := mt.AVGDuration(); avg > 0 {
			event = event.Dur("avg_pull", avg)
		}
		if total := mt.GetTotalDuration(); total > 0 {
			event = event.Dur("total", total)
		}
		event.Msg("stage measure")
	}
	if name, avg, ok := Slowest(msr); ok {
		logger.Info().Str("stage", name).Dur("avg_pull", avg).Msg("slowest stage")
	}
}

// Slowest returns the stage with the highest average pull duration. Ties go to the
// first label in order. ok is false when no stage was pulled.
func Slowest(msr Measure) (name string, avg time.Duration, ok bool) {
	all := msr.AllMetrics()
	for _, label := range slices.Sorted(maps.Keys(all)) {
		if current := all[label].AVGDuration(); current > avg {
			name, avg, ok = label, current, true
		}
	}

	return name, avg, ok
}

var _ Measure = (*DefaultMeasure)(nil)
