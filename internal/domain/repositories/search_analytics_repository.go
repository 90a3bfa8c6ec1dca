package repositories

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// SearchAnalyticsRepository stores search interactions
type SearchAnalyticsRepository interface {
	// LogEvent stores one search
	LogEvent(ctx context.Context, event *entities.SearchEvent) error

	// ZeroResultQueries returns the most recent searches that found nothing
	ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}
