package measure

import (
	"sync"
	"time"
)

// DefaultMetric is the in memory Metric of DefaultMeasure.
type DefaultMetric struct {
	endDuration  time.Duration
	stageElapsed time.Duration
	pulls        int64
	total        int64
	mu           sync.Mutex
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.pulls++
	mt.total++
	mt.stageElapsed += elapsed
}

func (mt *DefaultMetric) AddElements(n int64) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total += n
}

func (mt *DefaultMetric) Total() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.endDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.endDuration
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.pulls == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.stageElapsed) / float64(mt.pulls)))
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
