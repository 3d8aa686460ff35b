package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchVideos(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SearchResult), args.Error(1)
}

func searchRequest(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHandleSearch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockS := new(MockSearcher)
		srv := NewServer(mockS, nil, nil)

		expected := []SearchResult{
			{
				ID:        "abc123",
				Title:     "Test Track",
				Channel:   "Test Channel",
				Duration:  "3:04",
				Views:     "1.2M views",
				Thumbnail: "http://example.com/thumb.jpg",
				URL:       "https://www.youtube.com/watch?v=abc123",
			},
		}
		mockS.On("SearchVideos", mock.Anything, "test query", 10).Return(expected, nil)

		rr := searchRequest(t, srv, "/search?q=test%20query")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []SearchResult
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, expected, got)
		mockS.AssertExpectations(t)
	})

	t.Run("missing query", func(t *testing.T) {
		srv := NewServer(new(MockSearcher), nil, nil)
		rr := searchRequest(t, srv, "/search")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "query is required")
	})

	t.Run("query too long", func(t *testing.T) {
		srv := NewServer(new(MockSearcher), nil, nil)
		rr := searchRequest(t, srv, "/search?q="+strings.Repeat("a", 201))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "too long")
	})

	t.Run("limit out of range is rejected before any provider call", func(t *testing.T) {
		for _, limit := range []string{"0", "-1", "51", "abc"} {
			mockS := new(MockSearcher)
			srv := NewServer(mockS, nil, nil)

			rr := searchRequest(t, srv, "/search?q=test&limit="+limit)

			assert.Equal(t, http.StatusBadRequest, rr.Code, "limit=%s", limit)
			assert.Contains(t, rr.Body.String(), "limit")
			mockS.AssertNotCalled(t, "SearchVideos", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("custom limit", func(t *testing.T) {
		mockS := new(MockSearcher)
		srv := NewServer(mockS, nil, nil)
		mockS.On("SearchVideos", mock.Anything, "test", 5).Return([]SearchResult{}, nil)

		rr := searchRequest(t, srv, "/search?q=test&limit=5")

		assert.Equal(t, http.StatusOK, rr.Code)
		mockS.AssertExpectations(t)
	})

	t.Run("results capped at limit in provider order", func(t *testing.T) {
		mockS := new(MockSearcher)
		srv := NewServer(mockS, nil, nil)

		five := []SearchResult{
			{ID: "v1"}, {ID: "v2"}, {ID: "v3"}, {ID: "v4"}, {ID: "v5"},
		}
		mockS.On("SearchVideos", mock.Anything, "test", 2).Return(five, nil)

		rr := searchRequest(t, srv, "/search?q=test&limit=2")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []SearchResult
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 2)
		assert.Equal(t, "v1", got[0].ID)
		assert.Equal(t, "v2", got[1].ID)
	})

	t.Run("provider error", func(t *testing.T) {
		mockS := new(MockSearcher)
		srv := NewServer(mockS, nil, nil)
		mockS.On("SearchVideos", mock.Anything, "test", 10).Return(nil, errors.New("provider down"))

		rr := searchRequest(t, srv, "/search?q=test")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "detail")
		mockS.AssertExpectations(t)
	})
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(nil, nil, nil)
	rr := searchRequest(t, srv, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
	assert.Contains(t, rr.Body.String(), "music-stream-service")
}

func TestHandleRoot(t *testing.T) {
	srv := NewServer(nil, nil, nil)
	rr := searchRequest(t, srv, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "YouTube Music Player API")
}
