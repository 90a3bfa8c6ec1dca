package evaluation

// RecallAtK is the fraction of relevant items found in the top k retrieved.
// Returns 0 when relevant is empty.
func RecallAtK[T comparable](relevant, retrieved []T, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}

	relevantSet := toSet(relevant)
	found := 0
	for _, r := range topK(retrieved, k) {
		if _, ok := relevantSet[r]; ok {
			found++
			// duplicates in retrieved count once
			delete(relevantSet, r)
		}
	}

	return float64(found) / float64(len(relevant))
}

// MRRAtK is the reciprocal rank of the first relevant item in the top k
// retrieved, or 0 when none is found.
func MRRAtK[T comparable](relevant, retrieved []T, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0
	}

	relevantSet := toSet(relevant)
	for i, r := range topK(retrieved, k) {
		if _, ok := relevantSet[r]; ok {
			return 1 / float64(i+1)
		}
	}

	return 0
}

// Missing returns the relevant items absent from the top k retrieved, in
// relevant order.
func Missing[T comparable](relevant, retrieved []T, k int) []T {
	found := toSet(topK(retrieved, k))
	var missing []T
	for _, r := range relevant {
		if _, ok := found[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

func topK[T any](items []T, k int) []T {
	if k > 0 && k < len(items) {
		return items[:k]
	}
	return items
}

func toSet[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
