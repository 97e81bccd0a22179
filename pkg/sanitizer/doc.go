// Package sanitizer normalizes request input before validation and storage.
//
// All functions are idempotent and never fail: invalid input collapses to an
// empty string, and slice helpers drop empty values and duplicates while
// keeping the first occurrence in input order.
package sanitizer
