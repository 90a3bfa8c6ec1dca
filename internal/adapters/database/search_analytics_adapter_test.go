package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSearchAnalyticsAdapter(t *testing.T) (*SearchAnalyticsAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSearchAnalyticsAdapter(postgres.NewClientFromDB(db)), mock
}

func TestSearchAnalyticsAdapter_LogEventAssignsIDAndTime(t *testing.T) {
	adapter, mock := setupSearchAnalyticsAdapter(t)

	mock.ExpectExec(`INSERT INTO "search_events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &entities.SearchEvent{Query: "Phở", NormalizedQuery: "pho", ResultCount: 2, Lat: 21.03, Lng: 105.85}
	require.NoError(t, adapter.LogEvent(context.Background(), event))

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_LogEventFailure(t *testing.T) {
	adapter, mock := setupSearchAnalyticsAdapter(t)

	mock.ExpectExec(`INSERT INTO "search_events"`).WillReturnError(errors.New("relation does not exist"))

	err := adapter.LogEvent(context.Background(), &entities.SearchEvent{Query: "pho"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestSearchAnalyticsAdapter_ZeroResultQueries(t *testing.T) {
	adapter, mock := setupSearchAnalyticsAdapter(t)

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "query", "normalized_query", "categories", "sort", "radius_km", "result_count", "latency_ms", "lat", "lng", "client_id", "created_at"}).
		AddRow("7d9f0c1e-0000-4000-8000-000000000001", "Tacos", "tacos", "{Western}", "rating", 0.0, 0, 3, 21.03, 105.85, "browser-1", createdAt)
	mock.ExpectQuery(`SELECT .* FROM "search_events" WHERE .*"result_count" = \$1.* ORDER BY "created_at" DESC LIMIT \$2`).
		WithArgs(0, 10).
		WillReturnRows(rows)

	events, err := adapter.ZeroResultQueries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "Tacos", events[0].Query)
	assert.Equal(t, []string{"Western"}, events[0].Categories)
	assert.Equal(t, "browser-1", events[0].ClientID)
	assert.Equal(t, createdAt, events[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_ZeroResultQueriesDefaultLimit(t *testing.T) {
	adapter, mock := setupSearchAnalyticsAdapter(t)

	mock.ExpectQuery(`FROM "search_events"`).
		WithArgs(0, DefaultZeroResultLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	events, err := adapter.ZeroResultQueries(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
