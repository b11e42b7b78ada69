package assertions

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/probekit/probekit/packages/harness"
)

// Result describes one comparison's outcome.
type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
}

// EqualText compares the response body text against an expected string.
func EqualText(resp *harness.Response, expected string) *Result {
	actual, err := resp.Text()
	if err != nil {
		return &Result{
			Passed:   false,
			Message:  err.Error(),
			Expected: expected,
		}
	}
	if actual == expected {
		return &Result{Passed: true, Expected: expected, Actual: actual}
	}
	return &Result{
		Passed:   false,
		Message:  "body text mismatch:\n" + Diff(expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// EqualJSON decodes the response body as JSON and compares it against
// expected. The expected value is normalized through a JSON round trip
// first, so structs, maps, and numbers all compare by their JSON shape.
func EqualJSON(resp *harness.Response, expected any) *Result {
	var actual any
	if err := resp.JSON(&actual); err != nil {
		return &Result{
			Passed:   false,
			Message:  err.Error(),
			Expected: expected,
		}
	}

	normalized, err := normalizeJSON(expected)
	if err != nil {
		return &Result{
			Passed:   false,
			Message:  fmt.Sprintf("expected value is not JSON-representable: %v", err),
			Expected: expected,
			Actual:   actual,
		}
	}

	if reflect.DeepEqual(normalized, actual) {
		return &Result{Passed: true, Expected: normalized, Actual: actual}
	}
	return &Result{
		Passed:   false,
		Message:  "JSON body mismatch:\n" + Diff(prettyJSON(normalized), prettyJSON(actual)),
		Expected: normalized,
		Actual:   actual,
	}
}

// JSONPathEquals compares a single value addressed by a gjson path, e.g.
// "items.0.name", against expected.
func JSONPathEquals(resp *harness.Response, path string, expected any) *Result {
	result := resp.JSONPath(path)
	if !result.Exists() {
		return &Result{
			Passed:   false,
			Message:  fmt.Sprintf("path %q not found in body", path),
			Expected: expected,
		}
	}

	actual := result.Value()
	normalized, err := normalizeJSON(expected)
	if err != nil {
		return &Result{
			Passed:   false,
			Message:  fmt.Sprintf("expected value is not JSON-representable: %v", err),
			Expected: expected,
			Actual:   actual,
		}
	}

	if reflect.DeepEqual(normalized, actual) {
		return &Result{Passed: true, Expected: normalized, Actual: actual}
	}
	return &Result{
		Passed:   false,
		Message:  fmt.Sprintf("value at %q mismatch:\n%s", path, Diff(prettyJSON(normalized), prettyJSON(actual))),
		Expected: normalized,
		Actual:   actual,
	}
}

// MatchesJSONSchema validates the response body against a JSON Schema.
func MatchesJSONSchema(resp *harness.Response, schema []byte) *Result {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(resp.Bytes())

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &Result{
			Passed:  false,
			Message: fmt.Sprintf("schema validation error: %v", err),
		}
	}

	if validation.Valid() {
		return &Result{Passed: true}
	}

	var problems []string
	for _, desc := range validation.Errors() {
		problems = append(problems, desc.String())
	}
	return &Result{
		Passed:  false,
		Message: "schema violations:\n  - " + strings.Join(problems, "\n  - "),
	}
}

// normalizeJSON round-trips a value through JSON so comparisons see the
// decoded shape (map[string]any, []any, float64) on both sides.
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
