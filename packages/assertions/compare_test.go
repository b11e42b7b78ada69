package assertions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probekit/probekit/packages/harness"
)

func respondWith(t *testing.T, contentType string, body []byte) *harness.Response {
	t.Helper()
	server, err := harness.New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	resp, err := server.Get("/").Do()
	require.NoError(t, err)
	return resp
}

func TestEqualText(t *testing.T) {
	resp := respondWith(t, "text/plain", []byte("pong!"))

	assert.True(t, EqualText(resp, "pong!").Passed)

	result := EqualText(resp, "ping?")
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "mismatch")
	assert.Equal(t, "ping?", result.Expected)
	assert.Equal(t, "pong!", result.Actual)
}

func TestEqualJSON(t *testing.T) {
	resp := respondWith(t, "application/json", []byte(`{"id":7,"name":"widget"}`))

	type payload struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// Structs compare by their JSON shape, not their Go type.
	assert.True(t, EqualJSON(resp, payload{ID: 7, Name: "widget"}).Passed)
	assert.True(t, EqualJSON(resp, map[string]any{"id": 7, "name": "widget"}).Passed)

	result := EqualJSON(resp, payload{ID: 8, Name: "widget"})
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "JSON body mismatch")
}

func TestEqualJSON_BodyNotJSON(t *testing.T) {
	resp := respondWith(t, "text/plain", []byte("nope"))

	result := EqualJSON(resp, map[string]any{})
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "decode json")
}

func TestJSONPathEquals(t *testing.T) {
	resp := respondWith(t, "application/json",
		[]byte(`{"items":[{"name":"first"},{"name":"second"}],"total":2}`))

	assert.True(t, JSONPathEquals(resp, "items.1.name", "second").Passed)
	assert.True(t, JSONPathEquals(resp, "total", 2).Passed)

	result := JSONPathEquals(resp, "items.0.name", "second")
	assert.False(t, result.Passed)

	result = JSONPathEquals(resp, "missing.path", "anything")
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "not found")
}

func TestMatchesJSONSchema(t *testing.T) {
	schema := []byte(`{
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "integer"},
			"name": {"type": "string"}
		}
	}`)

	resp := respondWith(t, "application/json", []byte(`{"id":7,"name":"widget"}`))
	assert.True(t, MatchesJSONSchema(resp, schema).Passed)

	bad := respondWith(t, "application/json", []byte(`{"id":"seven"}`))
	result := MatchesJSONSchema(bad, schema)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "schema violations")
}

func TestDiff(t *testing.T) {
	out := Diff("line one\nline two\n", "line one\nline 2\n")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "line 2")

	// Identical inputs produce no diff.
	assert.Empty(t, Diff("same\n", "same\n"))
}
