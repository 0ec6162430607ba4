// Package generation produces short reading stories that use a set of
// vocabulary words. It defines the Generator boundary to external LLM
// services (see internal/platform/gemini), a deterministic template
// generator used as fallback, content quality validation, a chain that tries
// generators in order, and an in-process story cache.
package generation
