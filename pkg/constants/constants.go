// Package constants provides shared constants used throughout rescuesync.
// This includes poll intervals, timeouts, file permissions, and the
// Salesforce object names the reconcilers write to.
package constants

import "time"

// Timeout and polling constants
const (
	// DefaultHTTPTimeout is the standard timeout for a single Bulk API request
	DefaultHTTPTimeout = 60 * time.Second

	// QueryPollInterval is the fixed wait between query job status checks
	QueryPollInterval = 500 * time.Millisecond

	// IngestPollInterval is the fixed wait between ingest job status checks
	IngestPollInterval = 250 * time.Millisecond

	// DefaultJobTimeout bounds how long a single bulk job may be polled.
	// Zero disables the bound.
	DefaultJobTimeout = 30 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second

	// RetryBackoff is the base backoff duration for retried GET requests
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants
const (
	// MaxRetries is the maximum number of retry attempts for idempotent requests
	MaxRetries = 3

	// DefaultRequestsPerSecond throttles calls against the Bulk API
	DefaultRequestsPerSecond = 10

	// MaxErrorBodyBytes caps how much of an error response is kept for diagnostics
	MaxErrorBodyBytes = 64 * 1024
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Salesforce object names
const (
	ObjectAccount     = "Account"
	ObjectContact     = "Contact"
	ObjectFoodRescue  = "Food_Rescue__c"
	DefaultLoginURL   = "https://login.salesforce.com"
	DefaultAPIVersion = "v58.0"
)

// Rescue states recognized by the admin tool
const (
	StateCompleted = "completed"
	StateCanceled  = "canceled"
)

// DateLayout is the ISO date format used by admin exports and output artifacts
const DateLayout = "2006-01-02"
