package api

import (
	"errors"
	"strings"
)

// Envelope is the common header every server response carries.
type Envelope struct {
	Type        string   `json:"type"`
	Code        int      `json:"code"`
	Description string   `json:"description,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Elapsed     float64  `json:"elapsed"`
	RequestID   string   `json:"requestId"`
}

// Success reports whether the response carries a 2xx status. A missing code
// is treated as a server error.
func (e Envelope) Success() bool {
	code := e.Code
	if code == 0 {
		code = 500
	}
	return code >= 200 && code < 300
}

// ErrorMessage renders the envelope's failure as one human-readable string,
// or "" for successful responses.
func (e Envelope) ErrorMessage() string {
	if e.Success() {
		return ""
	}

	errs := e.Errors
	if len(errs) == 0 {
		errs = []string{"Unknown error"}
	}

	var b strings.Builder
	if e.Description != "" {
		b.WriteString(e.Description)
		b.WriteString(". ")
	}
	b.WriteString(strings.Join(errs, "; "))
	return b.String()
}

// Result is a typed server response. Data is only meaningful when the
// envelope reports success.
type Result[T any] struct {
	Envelope
	Data T `json:"data"`
}

// Err returns the envelope's failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Success() {
		return nil
	}
	return errors.New(r.ErrorMessage())
}

// Paged wraps list data the server returns a page at a time.
type Paged[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
