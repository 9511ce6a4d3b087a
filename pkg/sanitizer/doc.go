// Package sanitizer normalizes free-text and identifier input before it is
// validated and stored.
//
// All functions are idempotent: applying them twice yields the same result as
// applying them once. Invalid input degrades to an empty string rather than an
// error; validation decides whether empty is acceptable.
package sanitizer
