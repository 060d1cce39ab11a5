package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"TubeFM/config"
	"TubeFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, limit int) ([]model.SearchResultItem, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchResultItem), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{SearchLimit: 24}
}

func TestSearchHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockS := new(MockSearcher)
		h := NewAPIHandler(mockS, testConfig())

		expected := []model.SearchResultItem{
			{
				ID:    "dQw4w9WgXcQ",
				Title: "Test Track",
				URL:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Author: &model.Author{
					Name: "Test Channel",
				},
			},
		}
		mockS.On("Search", mock.Anything, "test query", 24).Return(expected, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=test%20query", nil)
		rr := httptest.NewRecorder()

		h.SearchHandler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp model.SearchResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, expected, resp.Items)
		mockS.AssertExpectations(t)
	})

	t.Run("missing query skips provider", func(t *testing.T) {
		mockS := new(MockSearcher)
		h := NewAPIHandler(mockS, testConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
		rr := httptest.NewRecorder()

		h.SearchHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Missing query parameter q")
		mockS.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("whitespace query skips provider", func(t *testing.T) {
		mockS := new(MockSearcher)
		h := NewAPIHandler(mockS, testConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=%20%20", nil)
		rr := httptest.NewRecorder()

		h.SearchHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockS.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		mockS := new(MockSearcher)
		h := NewAPIHandler(mockS, testConfig())

		mockS.On("Search", mock.Anything, "test", 24).Return(nil, errors.New("provider down"))

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=test", nil)
		rr := httptest.NewRecorder()

		h.SearchHandler(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "Search failed")
		mockS.AssertExpectations(t)
	})

	t.Run("empty result list is an empty array", func(t *testing.T) {
		mockS := new(MockSearcher)
		h := NewAPIHandler(mockS, testConfig())

		mockS.On("Search", mock.Anything, "obscure", 24).Return([]model.SearchResultItem(nil), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=obscure", nil)
		rr := httptest.NewRecorder()

		h.SearchHandler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"items":[]`)
	})
}

func TestHealthHandler(t *testing.T) {
	h := NewAPIHandler(nil, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()

	h.HealthHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}
