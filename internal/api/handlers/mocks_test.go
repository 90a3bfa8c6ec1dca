package handlers_test

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/stretchr/testify/mock"
)

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Locate(ctx context.Context, clientID string, refresh bool) services.LocationStatus {
	args := m.Called(ctx, clientID, refresh)
	return args.Get(0).(services.LocationStatus)
}

func (m *MockLocationService) Label(ctx context.Context, pos entities.GeoPosition) string {
	args := m.Called(ctx, pos)
	return args.String(0)
}

func (m *MockLocationService) Report(ctx context.Context, report entities.PositionReport) (services.LocationStatus, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(services.LocationStatus), args.Error(1)
}

func (m *MockLocationService) Deny(ctx context.Context, clientID, reason string) (services.LocationStatus, error) {
	args := m.Called(ctx, clientID, reason)
	return args.Get(0).(services.LocationStatus), args.Error(1)
}

func (m *MockLocationService) Stream(ctx context.Context, clientID string) (<-chan entities.GeoPosition, services.LocationStatus, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(services.LocationStatus), args.Error(2)
	}
	return args.Get(0).(<-chan entities.GeoPosition), args.Get(1).(services.LocationStatus), args.Error(2)
}

type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) RankDishes(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts services.RankOptions) []entities.ScoredCandidate {
	args := m.Called(ctx, pos, profile, opts)
	return args.Get(0).([]entities.ScoredCandidate)
}

func (m *MockRanker) RankRestaurants(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts services.RankOptions) []entities.ScoredCandidate {
	args := m.Called(ctx, pos, profile, opts)
	return args.Get(0).([]entities.ScoredCandidate)
}

type MockPreferenceSource struct {
	mock.Mock
}

func (m *MockPreferenceSource) PreferenceProfile(ctx context.Context, token string) (entities.PreferenceProfile, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(entities.PreferenceProfile), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, pos entities.Coordinates, params services.SearchParams) services.SearchResponse {
	args := m.Called(ctx, pos, params)
	return args.Get(0).(services.SearchResponse)
}

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Login(ctx context.Context, identifier, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockProfileStore) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockProfileStore) CurrentSession(ctx context.Context, token string) (*entities.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockProfileStore) CurrentProfile(ctx context.Context, token string) (entities.Profile, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(entities.Profile), args.Error(1)
}

func (m *MockProfileStore) SaveProfile(ctx context.Context, token string, update services.ProfileUpdate) (entities.Profile, error) {
	args := m.Called(ctx, token, update)
	return args.Get(0).(entities.Profile), args.Error(1)
}

func (m *MockProfileStore) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	args := m.Called(ctx, token, oldPassword, newPassword)
	return args.Error(0)
}

var (
	hoanKiem = &entities.Restaurant{
		ID: 1, Name: "Phở Gia Truyền", Address: "49 Bát Đàn, Hoàn Kiếm",
		Lat: 21.0333, Lng: 105.8466, Category: entities.CategoryVietnamese, Rating: 4.6, Reviews: 1200,
	}
	phoBo = &entities.MenuItem{
		ID: 10, RestaurantID: 1, Name: entities.Translated(map[string]string{"vi": "Phở bò tái", "en": "Rare beef pho"}),
		Category: "Vietnamese", Price: 50000, Rating: 4.7, Reviews: 320,
	}
)

func hanoiStatus(clientID string) services.LocationStatus {
	return services.LocationStatus{
		ClientID: clientID,
		Position: entities.GeoPosition{Lat: 21.0278, Lng: 105.8342, IsFallback: true},
		State:    services.StateFallback,
		Label:    services.DefaultFallbackLabel,
		Advisory: "position unavailable",
	}
}

type MockSearchAnalytics struct {
	mock.Mock
}

func (m *MockSearchAnalytics) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	m.Called(ctx, event)
}

func (m *MockSearchAnalytics) ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SearchEvent), args.Error(1)
}
