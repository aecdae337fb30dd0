// Package model provides the data structures shared by the pipeline package and its options.
// It describes the stages of a chain (their role and name) and the hooks an option can
// implement to observe stages being attached, pulled and drained.
package model
