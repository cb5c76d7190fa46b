// Package fault defines the error taxonomy shared across qualsync
// components. All four categories are fatal: they abort the run and are
// reported once at the top level with a non-zero exit status. Per-row data
// problems are never represented here; those are counted as skips.
package fault

import (
	"fmt"
	"time"
)

// ConfigError reports missing or invalid configuration, including required
// CSV columns absent from the export header. Detected pre-flight, before
// any document is touched.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// RemoteError reports that the Qualtrics API rejected a request or that an
// export ended in a failed state.
type RemoteError struct {
	URL    string
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("qualtrics API error %d at %s: %s", e.Status, e.URL, e.Detail)
	}
	if e.URL != "" {
		return fmt.Sprintf("qualtrics API request to %s failed: %s", e.URL, e.Detail)
	}
	return e.Detail
}

// TimeoutError reports that an export did not complete within the poll
// budget. The run is retryable from scratch on the next invocation.
type TimeoutError struct {
	Stage   string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Elapsed.Round(time.Second), e.Stage)
}

// FormatError reports an export payload that does not match the expected
// shape: a zip without a CSV entry, or an unparseable JSON response body.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return e.Msg
}
