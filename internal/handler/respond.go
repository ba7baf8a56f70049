// Package handler contains HTTP handlers for the Overseer admin API.
//
// This file holds the JSON plumbing shared by the API handlers.
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/domain"
)

// maxJSONBody caps API request bodies. Room and world properties ride in
// these payloads, so the cap is roomier than a typical form post.
const maxJSONBody = 1 << 20

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON reads the request body into dst. Oversized or malformed bodies
// come back as validation errors.
func decodeJSON(r *http.Request, dst any) error {
	const op = "handler.decode"

	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return domain.Invalid(op, "Failed to read request body")
	}
	if len(body) == 0 {
		return domain.Invalid(op, "Request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.Invalid(op, "Request body is not valid JSON")
	}
	return nil
}

// pathID parses the named path segment as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.EINVALID, "handler.path_id", "Invalid %s in URL", name)
	}
	return id, nil
}

// queryTimeRange parses the optional from and to query parameters as
// YYYY-MM-DD dates. Absent parameters come back as zero times; the services
// apply their own default windows.
func queryTimeRange(r *http.Request) (from, to time.Time, err error) {
	const op = "handler.time_range"

	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Errorf(domain.EINVALID, op, "from must be a YYYY-MM-DD date, got %q", v)
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Errorf(domain.EINVALID, op, "to must be a YYYY-MM-DD date, got %q", v)
		}
	}
	return from, to, nil
}
