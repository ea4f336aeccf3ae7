package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RhmnKpc/archiva/cmd/archiva/middleware"
	"github.com/RhmnKpc/archiva/cmd/archiva/types"
	pkgtypes "github.com/RhmnKpc/archiva/pkg/types"
	"github.com/RhmnKpc/archiva/internal/index"
	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/internal/repository/layout"
	"github.com/RhmnKpc/archiva/internal/scanner"
	"github.com/RhmnKpc/archiva/internal/storage"
	"github.com/RhmnKpc/archiva/pkg/config"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

const testSecret = "routes-secret"

// MockSearchService is a mock implementation of SearchServiceInterface
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) General(ctx context.Context, repoID, keyword string) ([]index.SearchResult, error) {
	args := m.Called(ctx, repoID, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]index.SearchResult), args.Error(1)
}

func (m *MockSearchService) Advanced(ctx context.Context, repoID string, q index.Query) ([]index.SearchResult, error) {
	args := m.Called(ctx, repoID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]index.SearchResult), args.Error(1)
}

type stubReloader struct {
	changed []string
	err     error
}

func (s *stubReloader) Reload() ([]string, error) { return s.changed, s.err }

type stubScanner struct {
	stats *scanner.Stats
	err   error
}

func (s *stubScanner) Scan(ctx context.Context, repoID string) (*scanner.Stats, error) {
	return s.stats, s.err
}

type testServer struct {
	router   *gin.Engine
	search   *MockSearchService
	location string
}

func newTestServer(t *testing.T, reloader ConfigReloader, scan ScannerInterface) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	location := t.TempDir()
	cfg := &config.Config{
		ManagedRepositories: []config.ManagedRepositoryConfig{
			{ID: "internal", Name: "Internal", Layout: layout.Default, Location: location, Releases: true},
		},
		RemoteRepositories: []config.RemoteRepositoryConfig{
			{ID: "central", Name: "Central", Layout: layout.Default, URL: "https://repo.maven.apache.org/maven2"},
		},
	}
	provider := layout.NewProvider(storage.NewStorageFactory(&config.StorageConfig{Type: "local"}))
	registry := repository.NewRegistry(repository.NewContentFactory(provider), cfg)

	if reloader == nil {
		reloader = &stubReloader{}
	}
	if scan == nil {
		scan = &stubScanner{stats: &scanner.Stats{}}
	}

	s := &testServer{router: gin.New(), search: &MockSearchService{}, location: location}
	auth := middleware.AuthMiddleware(testSecret)
	api := s.router.Group("/api")
	SearchRoutes(api, s.search)
	RepositoryRoutes(api, registry)
	AdminRoutes(api, auth, reloader, scan, registry)
	ContentRoutes(s.router, registry, auth)
	return s
}

func (s *testServer) do(method, target string, body []byte, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) write(t *testing.T, p, content string) {
	t.Helper()
	full := filepath.Join(s.location, filepath.FromSlash(p))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func token(t *testing.T, admin bool) string {
	t.Helper()
	tok, err := utils.GenerateJWT("tester", admin, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wrapped: %w", repository.ErrRepositoryNotFound), http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{repository.ErrInvalidPath, http.StatusBadRequest},
		{repository.ErrReadOnlyRepository, http.StatusConflict},
		{&index.BackendError{Query: "q", Err: errors.New("boom")}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestGeneralSearch(t *testing.T) {
	s := newTestServer(t, nil, nil)
	results := []index.SearchResult{{
		Artifact: pkgtypes.NewArtifactReference("g", "a", "1.0", ""),
		Fields:   map[string]index.FieldValue{index.FieldSHA1: index.ScalarValue("ABCDEF")},
	}}
	s.search.On("General", mock.Anything, "internal", "abcdef").Return(results, nil)

	w := s.do("GET", "/api/search/internal?q=abcdef", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Repository string `json:"repository"`
		Query      string `json:"query"`
		Count      int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal", response.Repository)
	assert.Equal(t, "abcdef", response.Query)
	assert.Equal(t, 1, response.Count)
	assert.Contains(t, w.Body.String(), `"sha1":"ABCDEF"`)
	s.search.AssertExpectations(t)
}

func TestGeneralSearch_Errors(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.search.On("General", mock.Anything, "missing", "x").
		Return(nil, fmt.Errorf("%w: missing", repository.ErrRepositoryNotFound))
	s.search.On("General", mock.Anything, "internal", "x").
		Return(nil, &index.BackendError{Query: `md5:"x"`, Err: errors.New("boom")})

	w := s.do("GET", "/api/search/missing?q=x", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("GET", "/api/search/internal?q=x", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Details, "boom")
}

func TestAdvancedSearch(t *testing.T) {
	s := newTestServer(t, nil, nil)
	expected := index.NewCompoundQuery().
		And(index.SinglePhraseQuery{Field: index.FieldGroupID, Value: "org.example"}).
		Not(index.SinglePhraseQuery{Field: index.FieldPackaging, Value: "war"})
	s.search.On("Advanced", mock.Anything, "internal", expected).Return([]index.SearchResult{}, nil)

	body := []byte(`{"clauses":[
		{"field":"groupId","value":"org.example"},
		{"operator":"not","field":"packaging","value":"war"}
	]}`)
	w := s.do("POST", "/api/search/internal/advanced", body, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
	assert.Contains(t, w.Body.String(), `"results":[]`)
	s.search.AssertExpectations(t)
}

func TestAdvancedSearch_BadRequests(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"clauses":`},
		{"no clauses", `{"clauses":[]}`},
		{"missing value", `{"clauses":[{"field":"groupId"}]}`},
		{"unknown field", `{"clauses":[{"field":"color","value":"red"}]}`},
		{"unknown operator", `{"clauses":[{"operator":"xor","field":"groupId","value":"g"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do("POST", "/api/search/internal/advanced", []byte(tt.body), "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	s.search.AssertNotCalled(t, "Advanced", mock.Anything, mock.Anything, mock.Anything)
}

func TestListRepositories(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do("GET", "/api/repositories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response []types.RepositoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "internal", response[0].ID)
	assert.Equal(t, "managed", response[0].Kind)
	assert.True(t, response[0].Releases)
	assert.Equal(t, "central", response[1].ID)
	assert.Equal(t, "remote", response[1].Kind)
	assert.Equal(t, "https://repo.maven.apache.org/maven2", response[1].URL)
}

func TestListVersions(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.write(t, "com/example/app/1.0/app-1.0.jar", "one")
	s.write(t, "com/example/app/1.10/app-1.10.jar", "ten")

	w := s.do("GET", "/api/repositories/internal/versions?groupId=com.example&artifactId=app", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"groupId":"com.example","artifactId":"app","versions":["1.10","1.0"]}`, w.Body.String())

	w = s.do("GET", "/api/repositories/internal/versions?groupId=com.example", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("GET", "/api/repositories/missing/versions?groupId=g&artifactId=a", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContent_GetAndHead(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.write(t, "com/example/app/1.0/app-1.0.pom", "<project/>")

	w := s.do("GET", "/repository/internal/com/example/app/1.0/app-1.0.pom", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<project/>", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/xml"))

	w = s.do("HEAD", "/repository/internal/com/example/app/1.0/app-1.0.pom", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do("GET", "/repository/internal/com/example/app/2.0/app-2.0.pom", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("GET", "/repository/missing/com/example/app/1.0/app-1.0.pom", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContent_Put(t *testing.T) {
	s := newTestServer(t, nil, nil)
	target := "/repository/internal/com/example/lib/1.0/lib-1.0.jar"

	w := s.do("PUT", target, []byte("jar bytes"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do("PUT", target, []byte("jar bytes"), token(t, false))
	require.Equal(t, http.StatusCreated, w.Code)

	data, err := os.ReadFile(filepath.Join(s.location, "com", "example", "lib", "1.0", "lib-1.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar bytes", string(data))

	w = s.do("GET", target, nil, "")
	assert.Equal(t, "jar bytes", w.Body.String())
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := s.do("POST", "/api/admin/reload", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do("POST", "/api/admin/reload", nil, token(t, false))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_Reload(t *testing.T) {
	reloader := &stubReloader{changed: []string{config.PropertyManagedRepositories}}
	s := newTestServer(t, reloader, nil)

	w := s.do("POST", "/api/admin/reload", nil, token(t, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changed":["managed_repositories"]`)

	reloader.changed, reloader.err = nil, errors.New("configuration was not loaded from a file")
	w = s.do("POST", "/api/admin/reload", nil, token(t, true))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdmin_Scan(t *testing.T) {
	scan := &stubScanner{stats: &scanner.Stats{Repository: "internal", Files: 3, Processed: 2}}
	s := newTestServer(t, nil, scan)

	w := s.do("POST", "/api/admin/scan/internal", nil, token(t, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"processed":2`)

	scan.stats, scan.err = nil, fmt.Errorf("%w: nope", repository.ErrRepositoryNotFound)
	w = s.do("POST", "/api/admin/scan/nope", nil, token(t, true))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_DeleteVersion(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.write(t, "com/example/app/1.0/app-1.0.jar", "one")
	s.write(t, "com/example/app/2.0/app-2.0.jar", "two")

	w := s.do("DELETE", "/api/admin/repositories/internal/versions?groupId=com.example&artifactId=app&version=1.0", nil, token(t, true))
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err := os.Stat(filepath.Join(s.location, "com", "example", "app", "1.0"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.location, "com", "example", "app", "2.0", "app-2.0.jar"))
	assert.NoError(t, err)

	w = s.do("DELETE", "/api/admin/repositories/internal/versions?groupId=com.example", nil, token(t, true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
