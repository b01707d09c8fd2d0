package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webscour"

	// DefaultWorkers is the number of concurrent crawl workers.
	DefaultWorkers = 3

	// DefaultMaxPages is the crawl budget: the maximum number of pages a
	// single run may successfully fetch.
	DefaultMaxPages = 20

	// DefaultTimeout bounds a single fetch attempt, body included.
	DefaultTimeout = 8 * time.Second

	// DefaultMaxAttempts is how many times a transient fetch failure is tried
	// before the URL is marked failed.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the pause between fetch attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultPollInterval is how long an idle worker blocks on the frontier
	// before re-checking whether the crawl is over.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTopK is the number of search results returned.
	DefaultTopK = 5

	// DefaultBatchSize is the number of hosts crawled concurrently when seeds
	// span several hosts.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "webscour/1.0"

	// DefaultQueueName is the AMQP queue carrying seed URLs.
	DefaultQueueName = "webscour.urls"

	// DefaultListenAddr is the address used by `webscour serve`.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultDBFile is the SQLite file name inside the data directory.
	DefaultDBFile = "webscour.db"

	// DefaultIndexDirName is the index directory name inside the data directory.
	DefaultIndexDirName = "index"

	// DefaultVisitedFile is the visited export file name inside the data directory.
	DefaultVisitedFile = "visited.txt"
)

// Config holds all configuration options for webscour.
// It is populated from CLI flags and passed down explicitly; there is no
// package-level state.
//
// Design decision: a single flat struct, as the number of options is still
// small. Each command only reads the fields it needs.
type Config struct {
	// Seeds are the URLs a crawl starts from.
	Seeds []string

	// Workers is the number of concurrent fetch workers per crawl run.
	Workers int

	// MaxPages is the crawl budget per run.
	MaxPages int

	// Timeout bounds one fetch attempt.
	Timeout time.Duration

	// MaxAttempts is the number of tries for a transient fetch failure.
	MaxAttempts int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// PollInterval is the bounded wait of an idle worker on the frontier.
	PollInterval time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// BatchSize is the number of hosts crawled concurrently.
	BatchSize int

	// TopK is the number of results a search returns.
	TopK int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the YAML configuration file.
	// If empty, .webscour is searched in the current and home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host settings loaded from the config file.
	SiteConfigs *File

	// DataDir holds the database, the index pair and the visited export.
	// Defaults to the XDG data directory.
	DataDir string

	// IndexDir overrides the location of the index pair.
	IndexDir string

	// VisitedOut overrides the location of the visited export.
	VisitedOut string

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile redirects output to a file instead of stdout.
	ReportFile string

	// AMQPURL is the broker URL for the queue-fed crawl and the enqueue command.
	AMQPURL string

	// QueueName is the AMQP queue name.
	QueueName string

	// FromQueue makes the crawl drain seed URLs from the queue.
	FromQueue bool

	// ListenAddr is the HTTP address of the search endpoint.
	ListenAddr string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:      DefaultWorkers,
		MaxPages:     DefaultMaxPages,
		Timeout:      DefaultTimeout,
		MaxAttempts:  DefaultMaxAttempts,
		RetryDelay:   DefaultRetryDelay,
		PollInterval: DefaultPollInterval,
		MaxBodySize:  DefaultMaxBodySize,
		UserAgent:    DefaultUserAgent,
		BatchSize:    DefaultBatchSize,
		TopK:         DefaultTopK,
		QueueName:    DefaultQueueName,
		ListenAddr:   DefaultListenAddr,
		DataDir:      XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for webscour.
// On Linux: ~/.local/share/webscour
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webscour.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DefaultDBFile)
}

// IndexPath returns the directory holding the index pair.
func (c *Config) IndexPath() string {
	if c.IndexDir != "" {
		return c.IndexDir
	}
	return filepath.Join(c.DataDir, DefaultIndexDirName)
}

// VisitedPath returns the visited export path.
func (c *Config) VisitedPath() string {
	if c.VisitedOut != "" {
		return c.VisitedOut
	}
	return filepath.Join(c.DataDir, DefaultVisitedFile)
}

// Validate checks the settings shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ValidateCrawl additionally requires something to crawl: seeds on the
// command line, or a queue to drain them from.
func (c *Config) ValidateCrawl() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.FromQueue {
		if c.AMQPURL == "" {
			return ErrNoAMQPURL
		}
		return nil
	}

	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	return nil
}
