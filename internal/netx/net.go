// Package netx has small HTTP helpers shared by the server components that
// talk to third-party endpoints.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBody caps how much of a failed response body ends up in an error.
const MaxErrorBody = 512

var ErrTooLarge = errors.New("response too large")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Status string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s; body: %s", e.Status, e.Body)
}

// Fetch GETs url and returns at most limit bytes of the body.
func Fetch(ctx context.Context, hc *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
		return nil, &StatusError{Status: resp.Status, Code: resp.StatusCode, Body: string(b)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
