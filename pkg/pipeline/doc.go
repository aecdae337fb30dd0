// Package pipeline composes lazy, pull based streams.
//
// A Stream yields its elements one at a time, only when asked with Next. Sources build
// streams out of arguments (MakeSource), pipe stages turn one stream into another
// (MakePipe, Lift, Bind) and drains consume a whole stream to return a plain value
// (MakeDrain, ToSlice, Count). Then and Compose attach a stage, or a plain function,
// to a stream; Concat chains streams one after the other.
//
// Nothing runs before a drain, or the caller, pulls. Resources opened by a source are
// released as soon as it is exhausted or when any downstream stream is closed, so
// abandoning a chain half way through only requires a Close on its last stream.
//
// Streams can report a length without being consumed, according to their LengthPolicy.
// The length is advisory: a stage is free to yield more or fewer elements.
//
// A Pipeline is optional. Streams tracked with it are observed by its options, such as
// the measure and drawer packages, and logged with its zerolog logger. RunAll runs
// independent chains concurrently.
package pipeline
