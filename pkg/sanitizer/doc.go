// Package sanitizer provides input normalization applied before validation
// and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is never an error; it normalizes to an empty string.
//
// Normalization includes:
//   - Names: collapse whitespace, trim leading/trailing spaces
//   - Labels: the same, then lowercase ("Golden  Retriever" becomes "golden retriever")
//   - Notes: drop control characters, keep line breaks, collapse blank lines
package sanitizer
