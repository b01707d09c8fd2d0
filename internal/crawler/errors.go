package crawler

import "errors"

var (
	// ErrNoSeed is returned by Run when nothing was submitted.
	ErrNoSeed = errors.New("crawler: no seed URL submitted")

	// ErrInvalidSeed is returned by Submit for a URL that cannot be normalized.
	ErrInvalidSeed = errors.New("crawler: invalid seed URL")

	// ErrInvalidWorkers is returned by Run when workerCount is not positive.
	ErrInvalidWorkers = errors.New("crawler: worker count must be positive")

	// ErrInvalidMaxPages is returned by Run when maxPages is not positive.
	ErrInvalidMaxPages = errors.New("crawler: max pages must be positive")

	// ErrNoScope is returned by Run when no domain scope was given and none
	// can be derived from the seeds.
	ErrNoScope = errors.New("crawler: no domain scope")

	// ErrAlreadyRun is returned when Run is called twice on the same Manager.
	// Crawl state lives for exactly one run.
	ErrAlreadyRun = errors.New("crawler: manager already ran")
)
