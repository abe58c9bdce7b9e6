//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertHeaders checks exact response header values.
func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}

// AssertHeaderMatches checks a response header against a regular expression.
func AssertHeaderMatches(t *testing.T, w *httptest.ResponseRecorder, key, pattern string) {
	t.Helper()
	value := w.Header().Get(key)
	if !assert.NotEmpty(t, value, "header %s missing", key) {
		return
	}
	assert.Regexp(t, pattern, value, "header %s mismatch", key)
}
