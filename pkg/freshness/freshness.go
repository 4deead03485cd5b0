// Package freshness implements the conditional-read check backing the
// If-Modified-Since handling on list and task reads.
package freshness

import (
	"net/http"
	"time"

	"github.com/glatasks/backend/pkg/timeutil"
)

// Evaluate compares a client-supplied last-known-modification header against
// the server's stored civil-local timestamp. It returns true when the server
// copy is the same or older, meaning a 304 should be served.
//
// The comparison is at second granularity and errs on the side of serving
// data: a malformed header yields (false, err) and the caller proceeds with a
// full response after logging.
func Evaluate(header string, serverLastUpdated time.Time, loc *time.Location) (bool, error) {
	client, err := parseClient(header)
	if err != nil {
		return false, err
	}
	server := timeutil.ToInstant(serverLastUpdated, loc).UTC().Truncate(time.Second)
	client = client.UTC().Truncate(time.Second)
	return !server.After(client), nil
}

// parseClient accepts RFC3339 (the format this service emits in Last-Modified)
// and falls back to the conventional HTTP date format.
func parseClient(header string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, header); err == nil {
		return t, nil
	}
	return http.ParseTime(header)
}
