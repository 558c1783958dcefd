package marketplace

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optomall/optomall/internal/upstream"
)

func newTestRouter(t *testing.T, mock *mockUpstream) http.Handler {
	t.Helper()
	svc := newTestService(t, mock)
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/api/alibaba", h.MountRoutes)
	return r
}

func TestSearchEndpoint(t *testing.T) {
	mock := &mockUpstream{searchResult: &upstream.SearchResult{
		Items:      []map[string]any{{"itemId": "1", "title": "Earbuds", "price": 9.5}},
		TotalCount: 57,
	}}
	router := newTestRouter(t, mock)

	body := `{"keyword":"earbuds","pageNo":2,"pageSize":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/alibaba/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success  bool              `json:"success"`
		Data     []json.RawMessage `json:"data"`
		Total    int               `json:"total"`
		PageNo   int               `json:"pageNo"`
		PageSize int               `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 57, resp.Total)
	assert.Equal(t, 2, resp.PageNo)
	assert.Equal(t, 10, resp.PageSize)
	assert.Len(t, resp.Data, 1)
}

func TestSearchMissingKeyword(t *testing.T) {
	router := newTestRouter(t, &mockUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/api/alibaba/search", strings.NewReader(`{"pageNo":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductDetailEndpointNotFoundForMockID(t *testing.T) {
	mock := &mockUpstream{}
	router := newTestRouter(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/alibaba/product/mock-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, mock.detailCalls)
}

func TestProductDetailEndpoint(t *testing.T) {
	mock := &mockUpstream{detailItem: map[string]any{"item_id": "88", "title": "Hub", "price": 3.0}}
	router := newTestRouter(t, mock)

	req := httptest.NewRequest(http.MethodGet, "/api/alibaba/product/88", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "88", resp.Data.ID)
	assert.Equal(t, "Hub", resp.Data.Name)
}

func TestReviewsEndpointShape(t *testing.T) {
	router := newTestRouter(t, &mockUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/api/alibaba/product/4455/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReviewsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data)
	assert.Greater(t, resp.Rating, 0.0)
	assert.GreaterOrEqual(t, resp.Total, len(resp.Data))
}

func TestShippingEstimateEndpointValidation(t *testing.T) {
	router := newTestRouter(t, &mockUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/api/alibaba/shipping-estimate", strings.NewReader(`{"productId":"5"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamFailureSurfacesAs500(t *testing.T) {
	mock := &mockUpstream{searchErr: assertErr("token missing")}
	router := newTestRouter(t, mock)

	req := httptest.NewRequest(http.MethodPost, "/api/alibaba/search", strings.NewReader(`{"keyword":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem.Detail, "token missing")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
