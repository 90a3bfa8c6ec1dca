package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
)

const searchEventsTable = "search_events"

// SearchAnalyticsSchema creates the search analytics table.
const SearchAnalyticsSchema = `
CREATE TABLE IF NOT EXISTS search_events (
	id               UUID PRIMARY KEY,
	query            TEXT NOT NULL DEFAULT '',
	normalized_query TEXT NOT NULL DEFAULT '',
	categories       TEXT[] NOT NULL DEFAULT '{}',
	sort             TEXT NOT NULL DEFAULT '',
	radius_km        DOUBLE PRECISION NOT NULL DEFAULT 0,
	result_count     INTEGER NOT NULL,
	latency_ms       BIGINT NOT NULL DEFAULT 0,
	lat              DOUBLE PRECISION NOT NULL,
	lng              DOUBLE PRECISION NOT NULL,
	client_id        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_events_zero_results ON search_events (created_at DESC) WHERE result_count = 0;
`

// DefaultZeroResultLimit caps ZeroResultQueries when no limit is given.
const DefaultZeroResultLimit = 100

type searchEventRow struct {
	entities.SearchEvent
	Categories pq.StringArray `db:"categories"`
}

// SearchAnalyticsAdapter implements SearchAnalyticsRepository on PostgreSQL
type SearchAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchAnalyticsAdapter creates a new search analytics adapter
func NewSearchAnalyticsAdapter(client *postgres.Client) *SearchAnalyticsAdapter {
	return &SearchAnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// EnsureSchema creates the analytics table when missing
func (a *SearchAnalyticsAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, SearchAnalyticsSchema); err != nil {
		return apperrors.NewInternalError("failed to create search analytics schema", err)
	}
	return nil
}

// LogEvent stores one search, assigning an ID and timestamp when missing
func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	categories := event.Categories
	if categories == nil {
		categories = []string{}
	}

	query, args, err := a.db.Insert(searchEventsTable).
		Prepared(true).
		Rows(goqu.Record{
			"id":               event.ID,
			"query":            event.Query,
			"normalized_query": event.NormalizedQuery,
			"categories":       pq.StringArray(categories),
			"sort":             event.Sort,
			"radius_km":        event.RadiusKm,
			"result_count":     event.ResultCount,
			"latency_ms":       event.LatencyMs,
			"lat":              event.Lat,
			"lng":              event.Lng,
			"client_id":        event.ClientID,
			"created_at":       event.CreatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}
	return nil
}

// ZeroResultQueries returns the newest searches that returned nothing
func (a *SearchAnalyticsAdapter) ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = DefaultZeroResultLimit
	}

	query, args, err := a.db.From(searchEventsTable).
		Prepared(true).
		Select("id", "query", "normalized_query", "categories", "sort", "radius_km", "result_count", "latency_ms", "lat", "lng", "client_id", "created_at").
		Where(goqu.C("result_count").Eq(0)).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []searchEventRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to get zero result queries", err)
	}

	events := make([]*entities.SearchEvent, 0, len(rows))
	for _, row := range rows {
		event := row.SearchEvent
		event.Categories = []string(row.Categories)
		events = append(events, &event)
	}
	return events, nil
}
