package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/raunelaunch/fooddiscovery/data"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
)

// JSONAdapter implements CatalogRepository over restaurants.json, menus.json and
// accounts.json in a file system.
type JSONAdapter struct {
	fsys fs.FS
}

// NewJSONAdapter reads the datasets from fsys
func NewJSONAdapter(fsys fs.FS) *JSONAdapter {
	return &JSONAdapter{fsys: fsys}
}

// NewEmbeddedJSONAdapter reads the datasets compiled into the binary
func NewEmbeddedJSONAdapter() *JSONAdapter {
	return NewJSONAdapter(data.Files)
}

// NewDirJSONAdapter reads the datasets from dir, falling back to the embedded copies when dir is empty
func NewDirJSONAdapter(dir string) *JSONAdapter {
	if dir == "" {
		return NewEmbeddedJSONAdapter()
	}
	return NewJSONAdapter(os.DirFS(dir))
}

// ListRestaurants returns every restaurant ordered by ID
func (a *JSONAdapter) ListRestaurants(ctx context.Context) ([]*entities.Restaurant, error) {
	var restaurants []*entities.Restaurant
	if err := a.decode(data.RestaurantsFile, &restaurants); err != nil {
		return nil, err
	}
	sort.SliceStable(restaurants, func(i, j int) bool { return restaurants[i].ID < restaurants[j].ID })
	return restaurants, nil
}

// ListMenuItems returns every menu item ordered by ID
func (a *JSONAdapter) ListMenuItems(ctx context.Context) ([]*entities.MenuItem, error) {
	var items []*entities.MenuItem
	if err := a.decode(data.MenusFile, &items); err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// ListAccounts returns the seed accounts in file order. A missing file yields none.
func (a *JSONAdapter) ListAccounts(ctx context.Context) ([]entities.Account, error) {
	var accounts []entities.Account
	if err := a.decode(data.AccountsFile, &accounts); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return accounts, nil
}

func (a *JSONAdapter) decode(name string, out interface{}) error {
	raw, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NewNotFoundError(fmt.Sprintf("dataset %s not found", name))
		}
		return apperrors.NewInternalError(fmt.Sprintf("failed to read %s", name), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to decode %s", name), err)
	}
	return nil
}
