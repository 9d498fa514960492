package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// jsonField returns the raw JSON found at path inside body.
func jsonField(t *testing.T, body []byte, path ...string) string {
	t.Helper()
	raw := json.RawMessage(body)
	for _, key := range path {
		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &obj))
		next, ok := obj[key]
		require.True(t, ok, "missing key %q", key)
		raw = next
	}
	return string(raw)
}
