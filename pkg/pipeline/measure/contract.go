package measure

import "time"

// Measure keeps one metric per stage, keyed by the stage label.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records what a stage did.
type Metric interface {
	// AddDuration records one element pulled out of the stage and how long the pull took.
	AddDuration(elapsed time.Duration)
	// AVGDuration returns the average pull duration.
	AVGDuration() time.Duration
	// AddElements records elements handled without a pull, such as the ones a drain consumed.
	AddElements(n int64)
	// Total returns the number of elements recorded.
	Total() int64
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}
