// Package assertions provides comparison helpers for harness responses.
//
// Each helper compares a response's decoded value or raw text against an
// expected value and returns a Result. On mismatch the Result's Message
// carries a colored, human-readable diff.
//
// Supported comparisons:
//   - EqualText: exact body text
//   - EqualJSON: decoded JSON value equality
//   - JSONPathEquals: a single value addressed by a gjson path
//   - MatchesJSONSchema: JSON Schema validation
package assertions
