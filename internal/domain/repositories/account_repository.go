package repositories

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// AccountSeedRepository provides the accounts copied into the profile store on first use
type AccountSeedRepository interface {
	// ListAccounts returns the seed accounts; plaintext passwords are allowed
	ListAccounts(ctx context.Context) ([]entities.Account, error)
}
