package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raunelaunch/fooddiscovery/internal/api/handlers"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchHandler_Search_PassesFilters(t *testing.T) {
	searcher := new(MockSearcher)
	locations := new(MockLocationService)
	handler := handlers.NewSearchHandler(searcher, locations)

	locations.On("Label", mock.Anything, mock.Anything).Return("Hoàn Kiếm, Hanoi")
	searcher.On("Search", mock.Anything, entities.Coordinates{Lat: 21.03, Lng: 105.85}, services.SearchParams{
		Query:      "phở bò",
		Categories: []string{"Vietnamese", "Cafe", "Asian"},
		Sort:       services.SortByDistance,
		RadiusKm:   2.5,
		Lang:       "en",
	}).Return(services.SearchResponse{
		Results: []services.SearchResult{
			{Restaurant: hoanKiem, DistanceKm: 0.4, Distance: "400 m"},
		},
		Count: 1,
		Query: "phở bò",
		Sort:  services.SortByDistance,
	})

	req := httptest.NewRequest(http.MethodGet,
		"/api/search?q=ph%E1%BB%9F+b%C3%B2&category=Vietnamese,Cafe&category=Asian&sort=distance&radius=2.5&lat=21.03&lng=105.85&lang=en", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, services.SortByDistance, resp.Sort)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "400 m", resp.Results[0].Distance)
	assert.Equal(t, "Hoàn Kiếm, Hanoi", resp.Location.Label)

	searcher.AssertExpectations(t)
}

func TestSearchHandler_Search_DefaultsToLocatorAndRating(t *testing.T) {
	searcher := new(MockSearcher)
	locations := new(MockLocationService)
	handler := handlers.NewSearchHandler(searcher, locations)

	locations.On("Locate", mock.Anything, "browser-9", false).Return(hanoiStatus("browser-9"))
	searcher.On("Search", mock.Anything, entities.Coordinates{Lat: 21.0278, Lng: 105.8342}, services.SearchParams{
		Sort: services.SortByRating,
	}).Return(services.SearchResponse{Results: []services.SearchResult{}, Sort: services.SortByRating})

	w := httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/api/search?client_id=browser-9&sort=cheapest", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.True(t, resp.Location.Position.IsFallback)

	searcher.AssertExpectations(t)
}

func TestSearchHandler_Search_InvalidRadius(t *testing.T) {
	searcher := new(MockSearcher)
	handler := handlers.NewSearchHandler(searcher, new(MockLocationService))

	w := httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/api/search?radius=-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_TracksSearch(t *testing.T) {
	searcher := new(MockSearcher)
	locations := new(MockLocationService)
	tracker := new(MockSearchAnalytics)
	handler := handlers.NewSearchHandler(searcher, locations)
	handler.SetTracker(tracker)

	locations.On("Label", mock.Anything, mock.Anything).Return("Hoàn Kiếm, Hanoi")
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(services.SearchResponse{Results: []services.SearchResult{}, Query: "tacos", Sort: services.SortByRating})
	tracker.On("TrackSearch", mock.Anything, mock.MatchedBy(func(e *entities.SearchEvent) bool {
		return e.Query == "tacos" && e.ResultCount == 0 && e.Sort == "rating" &&
			e.Lat == 21.03 && e.Lng == 105.85 && len(e.Categories) == 1 && e.Categories[0] == "Western"
	})).Once()

	w := httptest.NewRecorder()
	handler.Search(w, httptest.NewRequest(http.MethodGet, "/api/search?q=tacos&category=Western&lat=21.03&lng=105.85", nil))

	require.Equal(t, http.StatusOK, w.Code)
	tracker.AssertExpectations(t)
}
