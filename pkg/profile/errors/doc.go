// Package errors provides rich error types for profile parsing and
// validation.
//
// Errors carry a category, the JSON path of the offending rule (e.g.
// "mappings[3].fields[1]"), and an optional suggestion. Parsing
// accumulates errors in an ErrorList instead of failing on the first
// problem, so a profile author sees every defect at once.
package errors
