package rag

import "errors"

// ErrInjectionDetected is returned when the query text matches a known
// prompt-injection pattern. The query is rejected before any model call.
var ErrInjectionDetected = errors.New("prompt injection detected")

// ErrEmptyQuery is returned when the sanitized query text is empty.
var ErrEmptyQuery = errors.New("empty query text")
