// Package gemini provides an implementation of the generation.Generator
// interface that uses Google's Gemini API to write vocabulary stories.
//
// This package is an infrastructure adapter connecting the story service to
// Google's external Gemini AI service. It renders the story prompt, calls the
// API with retry and exponential backoff for transient errors, and translates
// API failures into the generation package's errors:
//
//   - rate limiting, server errors and network failures are retried
//   - safety blocks map to generation.ErrContentBlocked and are not retried
//   - empty responses map to generation.ErrInvalidResponse
//
// The package depends on the google.golang.org/genai client library.
package gemini
