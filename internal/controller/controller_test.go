package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubContentService struct {
	service.IContentService
	created *dto.CreateContentRequest
}

func (s *stubContentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContentRequest) (*dto.CreateContentResponse, error) {
	s.created = req
	return &dto.CreateContentResponse{Content: &dto.ContentResponse{Id: uuid.New(), Name: req.Name}}, nil
}

func (s *stubContentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentResponse, error) {
	return nil, serverutils.NotFound("content")
}

type stubSearchService struct {
	got *dto.SearchRequest
}

func (s *stubSearchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	s.got = req
	return &dto.SearchResponse{Query: req.Query}, nil
}

func newTestApp(content service.IContentService, search service.ISearchService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	api := app.Group("/api")
	auth := serverutils.NewJwtMiddleware(testSecret)
	NewContentController(content).RegisterRoutes(api, auth)
	NewSearchController(search).RegisterRoutes(api, auth)
	NewSystemController(service.NewHealthService(service.NewJobStats(nil))).RegisterRoutes(api, auth)
	return app
}

func bearer(t *testing.T) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.NewString()})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func decode(t *testing.T, body io.Reader) serverutils.BaseResponse[json.RawMessage] {
	var res serverutils.BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestContentRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		auth     bool
		wantCode int
	}{
		{name: "missing token", method: http.MethodGet, path: "/api/content/v1/" + uuid.NewString(), wantCode: fiber.StatusUnauthorized},
		{name: "create", method: http.MethodPost, path: "/api/content/v1", body: `{"name":"Cells","content":"Cells are units of life."}`, auth: true, wantCode: fiber.StatusCreated},
		{name: "create invalid json", method: http.MethodPost, path: "/api/content/v1", body: `{`, auth: true, wantCode: fiber.StatusBadRequest},
		{name: "create missing content", method: http.MethodPost, path: "/api/content/v1", body: `{"name":"Cells"}`, auth: true, wantCode: fiber.StatusBadRequest},
		{name: "create bad difficulty", method: http.MethodPost, path: "/api/content/v1", body: `{"name":"n","content":"c","difficulty_level":"impossible"}`, auth: true, wantCode: fiber.StatusBadRequest},
		{name: "list bad status", method: http.MethodGet, path: "/api/content/v1?status=archived", auth: true, wantCode: fiber.StatusBadRequest},
		{name: "show missing", method: http.MethodGet, path: "/api/content/v1/" + uuid.NewString(), auth: true, wantCode: fiber.StatusNotFound},
		{name: "show malformed id", method: http.MethodGet, path: "/api/content/v1/not-a-uuid", auth: true, wantCode: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubContentService{}, &stubSearchService{})

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth {
				req.Header.Set("Authorization", bearer(t))
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			res := decode(t, resp.Body)
			assert.Equal(t, tt.wantCode < 300, res.Success)
		})
	}
}

func TestSearchRoute(t *testing.T) {
	search := &stubSearchService{}
	app := newTestApp(&stubContentService{}, search)

	req := httptest.NewRequest(http.MethodGet, "/api/search/v1?q=entropy&limit=5&debug=true", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, search.got)
	assert.Equal(t, "entropy", search.got.Query)
	assert.Equal(t, 5, search.got.Limit)
	assert.True(t, search.got.Debug)

	req = httptest.NewRequest(http.MethodGet, "/api/search/v1", nil)
	req.Header.Set("Authorization", bearer(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthRouteIsPublic(t *testing.T) {
	app := newTestApp(&stubContentService{}, &stubSearchService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs/v1/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
