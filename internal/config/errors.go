package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateCrawl. Callers match them with errors.Is.
var (
	// ErrNoSeed is returned when a crawl has neither seed URLs nor a queue.
	ErrNoSeed = errors.New("no seed specified: provide a URL or use --from-queue")

	// ErrNoAMQPURL is returned when the queue is requested without a broker URL.
	ErrNoAMQPURL = errors.New("no AMQP URL specified: use --amqp-url")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxPages is returned when the crawl budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A fetch without a bound could stall a worker forever.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when the attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("invalid retries: must be positive")

	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
