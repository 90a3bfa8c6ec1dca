package evaluation

import "time"

// QueryKind describes what a golden query is aimed at.
type QueryKind string

const (
	KindDish       QueryKind = "dish"       // e.g. "pho", "bun cha"
	KindRestaurant QueryKind = "restaurant" // e.g. "gogi"
	KindCategory   QueryKind = "category"   // e.g. "Cafe"
	KindTag        QueryKind = "tag"        // e.g. "breakfast"
)

// ValidKinds returns all valid query kinds.
func ValidKinds() []QueryKind {
	return []QueryKind{KindDish, KindRestaurant, KindCategory, KindTag}
}

// IsValid checks if the kind is one of the defined constants.
func (k QueryKind) IsValid() bool {
	switch k {
	case KindDish, KindRestaurant, KindCategory, KindTag:
		return true
	}
	return false
}

// GoldenQuery is a labeled search query with the restaurants it should find.
type GoldenQuery struct {
	ID                  string    `json:"id"`
	Query               string    `json:"query"`
	Kind                QueryKind `json:"kind"`
	ExpectedRestaurants []int64   `json:"expected_restaurants"`
	Lang                string    `json:"lang,omitempty"`
	Difficulty          string    `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID     string        `json:"query_id"`
	Query       string        `json:"query"`
	Kind        QueryKind     `json:"kind"`
	Recall      float64       `json:"recall"`
	MRR         float64       `json:"mrr"`
	ResultCount int           `json:"result_count"`
	Retrieved   []int64       `json:"retrieved"`
	Missing     []int64       `json:"missing,omitempty"`
	Latency     time.Duration `json:"latency_ns"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	K               int                        `json:"k"`
	TotalQueries    int                        `json:"total_queries"`
	AvgRecall       float64                    `json:"avg_recall"`
	AvgMRR          float64                    `json:"avg_mrr"`
	AvgLatency      time.Duration              `json:"avg_latency_ns"`
	QueriesWithHits int                        `json:"queries_with_hits"` // queries that returned at least 1 result
	ByKind          map[QueryKind]*KindSummary `json:"by_kind"`
	Results         []EvalResult               `json:"results"`
}

// KindSummary holds metrics grouped by query kind.
type KindSummary struct {
	Count     int     `json:"count"`
	AvgRecall float64 `json:"avg_recall"`
	AvgMRR    float64 `json:"avg_mrr"`
}
