package models

// BatchWindow is the contiguous index range of names processed in one
// generation call. Offset defaults to 0, Limit of 0 means "up to the cap".
type BatchWindow struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Clamp resolves the effective half-open window [start, end) against the
// total number of names and the per-request cap. The result never exceeds
// the available names: offset at or past the end yields an empty window.
func (w BatchWindow) Clamp(total, maxBatch int) (start, end int) {
	start = w.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}

	count := w.Limit
	if count <= 0 || count > maxBatch {
		count = maxBatch
	}

	end = start + count
	if end > total {
		end = total
	}
	return start, end
}
