// Package pipeline runs the offline index build as a sequence of steps and
// fans multi-host crawls out over a bounded batch.
//
// The index pipeline processes one IndexRun through these steps:
//
//	load documents -> extract text -> build index -> save index
//
// Each step is a Step that reads and updates the run. A document whose text
// cannot be extracted is skipped and counted, and the build continues with
// the rest.
//
// Design decision: a pipeline of steps instead of direct function calls,
// so each stage logs the same way and cancellation is checked between
// stages. The same shape keeps the steps testable in isolation.
//
// BatchProcessor runs one crawl per seed host with errgroup and a
// concurrency limit, collecting every run's statistics even when some of
// them fail.
package pipeline
