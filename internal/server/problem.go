package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound    = "https://pcdiag.dev/problems/not-found"
	ProblemTypeConflict    = "https://pcdiag.dev/problems/conflict"
	ProblemTypeBadRequest  = "https://pcdiag.dev/problems/bad-request"
	ProblemTypeInvalidScan = "https://pcdiag.dev/problems/invalid-scan"
	ProblemTypeTooLarge    = "https://pcdiag.dev/problems/payload-too-large"
	ProblemTypeInternal    = "https://pcdiag.dev/problems/internal-error"
	ProblemTypeRateLimited = "https://pcdiag.dev/problems/rate-limited"
)

// Problem represents an RFC 7807 Problem Details response. Errors carries
// per-field messages keyed by JSON path for invalid scans.
type Problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// Conflict writes a 409 problem response.
func Conflict(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// InvalidScan writes a 400 problem response listing the offending fields.
func InvalidScan(w http.ResponseWriter, fields map[string]string, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInvalidScan,
		Title:    "Invalid Scan",
		Status:   http.StatusBadRequest,
		Detail:   "the scan document failed validation",
		Instance: instance,
		Errors:   fields,
	})
}

// TooLarge writes a 413 problem response.
func TooLarge(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeTooLarge,
		Title:    "Payload Too Large",
		Status:   http.StatusRequestEntityTooLarge,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}
