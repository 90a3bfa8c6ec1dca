package evaluation

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
)

// LoadGoldenQueries reads and parses a golden query set from fsys.
func LoadGoldenQueries(fsys fs.FS, name string) ([]GoldenQuery, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}
	return parseGoldenQueries(data)
}

// LoadGoldenQueriesFile reads a golden query set from a path on disk.
func LoadGoldenQueriesFile(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}
	return parseGoldenQueries(data)
}

func parseGoldenQueries(data []byte) ([]GoldenQuery, error) {
	var queries []GoldenQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries: %w", err)
	}
	return queries, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenQueries checks that all golden queries have required fields and valid values.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	seen := make(map[string]struct{}, len(queries))

	for i, q := range queries {
		if q.ID == "" {
			return fmt.Errorf("query at index %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("query at index %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Query == "" {
			return fmt.Errorf("query %q: missing query text", q.ID)
		}
		if !q.Kind.IsValid() {
			return fmt.Errorf("query %q: invalid kind %q", q.ID, q.Kind)
		}
		if len(q.ExpectedRestaurants) == 0 {
			return fmt.Errorf("query %q: no expected restaurants", q.ID)
		}
		if !validDifficulties[q.Difficulty] {
			return fmt.Errorf("query %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
		}
	}

	return nil
}
