package sdmx

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────
// Error taxonomy
//
// Retry policy and user messaging both switch on these types:
//   *InputError, *UnknownDatasetError  — caller mistakes, never retried
//   *TimeoutError, *NetworkError      — transient, retried with backoff
//   *RemoteError                       — retried only for 5xx statuses
// ─────────────────────────────────────────────────────────────

// InputError reports a caller-supplied value that was rejected before any
// network action was taken.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// UnknownDatasetError reports a dataset id that is not in the catalog.
type UnknownDatasetError struct {
	ID string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("unknown dataset %q", e.ID)
}

// TimeoutError reports an attempt that exceeded its deadline.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError reports a connection-level failure (reset, DNS, TLS).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError reports a non-2xx response from the remote service.
type RemoteError struct {
	Status int
	URL    string
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned %d for %s", e.Status, e.URL)
}

// Transient reports whether the status is worth retrying.
func (e *RemoteError) Transient() bool { return e.Status >= 500 }

// ─────────────────────────────────────────────────────────────
// Diagnostics
// ─────────────────────────────────────────────────────────────

// Diagnostic is the structured, user-facing form of a failure. It is what
// crosses the trust boundary to the protocol front-end; raw error text and
// stack traces never do.
type Diagnostic struct {
	Category    string   `json:"category"`
	Status      int      `json:"status,omitempty"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// filterSyntaxRules is included in 422 diagnostics so callers can fix the
// dimension filter without consulting external docs.
var filterSyntaxRules = []string{
	"Separate dimension positions with dots: VALUE1.VALUE2.VALUE3",
	"Leave a position empty to match all values of that dimension: USA..A",
	"Combine values within one position using +: USA+GBR.GDP.A",
	"Use get_dataset_structure to see the dimensions and their valid codes",
}

// Diagnose maps an HTTP status from the remote service to an actionable
// diagnostic. Pure mapping, no side effects.
func Diagnose(status int) Diagnostic {
	switch {
	case status == 400:
		return Diagnostic{
			Category: "remote",
			Status:   status,
			Summary:  "The remote service rejected the request as malformed.",
			Suggestions: []string{
				"Check the filter against the dataset structure",
				"Check startPeriod/endPeriod formats (YYYY, YYYY-Qn, YYYY-MM)",
			},
		}
	case status == 404:
		return Diagnostic{
			Category: "remote",
			Status:   status,
			Summary:  "The remote service has no data for this dataset and filter.",
			Suggestions: []string{
				"Try a broader filter, or an empty position to match all values",
				"Widen or remove the startPeriod/endPeriod range",
				"Confirm the dataset id with list_datasets",
			},
		}
	case status == 422:
		return Diagnostic{
			Category:    "remote",
			Status:      status,
			Summary:     "The remote service could not process the dimension filter.",
			Suggestions: filterSyntaxRules,
		}
	case status == 429:
		return Diagnostic{
			Category: "remote",
			Status:   status,
			Summary:  "The remote service is throttling this client.",
			Suggestions: []string{
				"Wait a minute before retrying",
				"Narrow the query so fewer requests are needed",
			},
		}
	case status >= 500:
		return Diagnostic{
			Category: "remote",
			Status:   status,
			Summary:  "The remote service failed internally.",
			Suggestions: []string{
				"Retry later; the request itself is likely fine",
			},
		}
	default:
		return Diagnostic{
			Category: "remote",
			Status:   status,
			Summary:  fmt.Sprintf("The remote service returned an unexpected status (%d).", status),
			Suggestions: []string{
				"Retry later, or narrow the query",
			},
		}
	}
}

// DiagnosticFor converts any pipeline error into its structured form.
func DiagnosticFor(err error) Diagnostic {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return Diagnostic{
			Category: "input",
			Summary:  inputErr.Error(),
			Suggestions: []string{
				"Correct the value and call the tool again",
			},
		}
	}

	var unknownErr *UnknownDatasetError
	if errors.As(err, &unknownErr) {
		return Diagnostic{
			Category: "unknown_dataset",
			Summary:  unknownErr.Error(),
			Suggestions: []string{
				"Call list_datasets to see the available dataset ids",
				"Call search_datasets to find a dataset by topic",
			},
		}
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return Diagnostic{
			Category: "timeout",
			Summary:  "The remote service did not answer before the deadline.",
			Suggestions: []string{
				"Retry; the service may be under load",
				"Narrow the filter or period range to reduce the response size",
			},
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return Diagnostic{
			Category: "network",
			Summary:  "Could not reach the remote service.",
			Suggestions: []string{
				"Check connectivity and retry",
			},
		}
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return Diagnose(remoteErr.Status)
	}

	return Diagnostic{
		Category: "internal",
		Summary:  "The request failed unexpectedly.",
		Suggestions: []string{
			"Retry; report the problem if it persists",
		},
	}
}
