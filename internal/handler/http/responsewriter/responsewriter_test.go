package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_DefaultsTo200(t *testing.T) {
	rec := Wrap(httptest.NewRecorder())

	assert.False(t, rec.Written())
	assert.Equal(t, http.StatusOK, rec.Status())
	assert.Zero(t, rec.Bytes())
}

func TestRecorder_FirstStatusWins(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := Wrap(inner)

	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusInternalServerError)

	assert.True(t, rec.Written())
	assert.Equal(t, http.StatusNotFound, rec.Status())
	assert.Equal(t, http.StatusNotFound, inner.Code)
}

func TestRecorder_WriteCountsBytes(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := Wrap(inner)

	n, err := rec.Write([]byte(`{"id":"a"}`))
	require.NoError(t, err)
	_, err = rec.Write([]byte("\n"))
	require.NoError(t, err)

	assert.Equal(t, 10, n)
	assert.Equal(t, 11, rec.Bytes())
	assert.Equal(t, http.StatusOK, rec.Status())
	assert.Equal(t, `{"id":"a"}`+"\n", inner.Body.String())
}

func TestRecorder_WrapIsIdempotent(t *testing.T) {
	rec := Wrap(httptest.NewRecorder())
	assert.Same(t, rec, Wrap(rec))
}

func TestRecorder_Flush(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := Wrap(inner)

	rec.Flush()

	assert.True(t, inner.Flushed)
	assert.Equal(t, http.StatusOK, rec.Status())
}

func TestRecorder_ResponseControllerReachesInner(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := Wrap(inner)

	require.NoError(t, http.NewResponseController(rec).Flush())
	assert.True(t, inner.Flushed)
	assert.Same(t, http.ResponseWriter(inner), rec.Unwrap())
}
