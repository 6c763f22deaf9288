// Package sanitizer normalizes visitor and account input before validation and storage.
//
// All normalization functions are idempotent. Invalid input is handled by returning
// an empty string rather than an error, so the validator reports the problem.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]), parsed against a configurable list of regions
//   - Free text (names, addresses, reasons): trim and collapse internal whitespace
//   - Emails: trim and lowercase
//   - Photo URLs: trim, lowercase scheme and host, keep path and query untouched
package sanitizer
