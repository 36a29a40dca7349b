// Package cooccur tracks how often token pairs appear together in one
// classification call. Counters are symmetric, monotonic, and saturate
// at the uint16 maximum instead of wrapping.
package cooccur

import "github.com/danielpatrickdp/sentiment-engine/internal/vocab"

// #region matrix

// MaxCount is the saturation ceiling for a pair counter.
const MaxCount = ^uint16(0)

// Matrix is a dense token-pair counter over the full id space.
type Matrix struct {
	counts []uint16
}

// NewMatrix allocates the full vocab.MaxTokens² counter space (≈2 MiB).
func NewMatrix() *Matrix {
	return &Matrix{counts: make([]uint16, vocab.MaxTokens*vocab.MaxTokens)}
}

// Count returns the raw saturating counter for the ordered pair (a, b).
func (m *Matrix) Count(a, b int) uint16 {
	if a < 0 || a >= vocab.MaxTokens || b < 0 || b >= vocab.MaxTokens {
		return 0
	}
	return m.counts[a*vocab.MaxTokens+b]
}

// #endregion matrix

// #region record

// increment bumps one directed counter, saturating at MaxCount.
func (m *Matrix) increment(a, b int) {
	idx := a*vocab.MaxTokens + b
	if m.counts[idx] < MaxCount {
		m.counts[idx]++
	}
}

// RecordBatch increments both directed counters for every unordered pair
// of distinct token ids present in one call's input. A pair appearing via
// duplicate positions counts once. Returns the distinct pairs recorded so
// the caller can update per-token co-occurrence summaries.
func (m *Matrix) RecordBatch(tokens []int) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			a, b := tokens[i], tokens[j]
			if a == b || a < 0 || b < 0 || a >= vocab.MaxTokens || b >= vocab.MaxTokens {
				continue
			}
			if containsPair(pairs, a, b) {
				continue
			}
			m.increment(a, b)
			m.increment(b, a)
			pairs = append(pairs, [2]int{a, b})
		}
	}
	return pairs
}

// containsPair checks both orientations. Inputs are at most 16 tokens, so
// a linear scan beats a map allocation.
func containsPair(pairs [][2]int, a, b int) bool {
	for _, p := range pairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

// #endregion record

// #region export

// Cell is one nonzero counter in snapshot form (stored once per unordered
// pair with A < B).
type Cell struct {
	A     int
	B     int
	Count uint16
}

// ExportState returns every nonzero unordered pair.
func (m *Matrix) ExportState() []Cell {
	var cells []Cell
	for a := 0; a < vocab.MaxTokens; a++ {
		for b := a + 1; b < vocab.MaxTokens; b++ {
			if c := m.counts[a*vocab.MaxTokens+b]; c != 0 {
				cells = append(cells, Cell{A: a, B: b, Count: c})
			}
		}
	}
	return cells
}

// RestoreState replaces all counters from exported cells.
func (m *Matrix) RestoreState(cells []Cell) {
	for i := range m.counts {
		m.counts[i] = 0
	}
	for _, c := range cells {
		if c.A < 0 || c.A >= vocab.MaxTokens || c.B < 0 || c.B >= vocab.MaxTokens {
			continue
		}
		m.counts[c.A*vocab.MaxTokens+c.B] = c.Count
		m.counts[c.B*vocab.MaxTokens+c.A] = c.Count
	}
}

// #endregion export
