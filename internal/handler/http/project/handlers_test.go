package project_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/domain/entity"
	"webwatch/internal/handler/http/project"
	projUC "webwatch/internal/usecase/project"
)

type memRepo struct{ data map[string]*entity.Project }

func (m *memRepo) Get(_ context.Context, id string) (*entity.Project, error) { return m.data[id], nil }
func (m *memRepo) List(context.Context) ([]*entity.Project, error) {
	var out []*entity.Project
	for _, p := range m.data {
		out = append(out, p)
	}
	return out, nil
}
func (m *memRepo) Create(_ context.Context, p *entity.Project) error {
	p.ID = "p-1"
	m.data[p.ID] = p
	return nil
}

func newMux() (*memRepo, *http.ServeMux) {
	repo := &memRepo{data: map[string]*entity.Project{}}
	mux := http.NewServeMux()
	project.Register(mux, &projUC.Service{Repo: repo})
	return repo, mux
}

func TestProjectHandlers_CreateGetList(t *testing.T) {
	repo, mux := newMux()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects",
		strings.NewReader(`{"name":"Acme","keywords":["acme"],"hashtags":["#acme"]}`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/projects/p-1", rr.Header().Get("Location"))
	assert.True(t, repo.data["p-1"].IsActive)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/p-1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects", nil))
	var list []entity.Project
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestProjectHandlers_Errors(t *testing.T) {
	_, mux := newMux()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`[`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects/none", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/projects", nil))
	assert.JSONEq(t, `[]`, rr.Body.String())
}
