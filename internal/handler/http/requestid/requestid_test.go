package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, incoming string) (header, seen string) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Header().Get(Header), seen
}

func TestMiddleware_Generates(t *testing.T) {
	header, seen := serve(t, "")

	require.NotEmpty(t, header)
	assert.Equal(t, header, seen)
	_, err := uuid.Parse(header)
	assert.NoError(t, err)
}

func TestMiddleware_PropagatesValidID(t *testing.T) {
	for _, id := range []string{"req-123", "abc_DEF.1:2", uuid.NewString()} {
		header, seen := serve(t, id)
		assert.Equal(t, id, header)
		assert.Equal(t, id, seen)
	}
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	tests := map[string]string{
		"newline":  "abc\ninjected=1",
		"space":    "two words",
		"too long": strings.Repeat("a", maxLen+1),
		"quote":    `x"y`,
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			header, seen := serve(t, id)
			assert.NotEqual(t, id, header)
			assert.Equal(t, header, seen)
			_, err := uuid.Parse(header)
			assert.NoError(t, err)
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		id, _ := serve(t, "")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "r1", FromContext(WithRequestID(context.Background(), "r1")))
}
