package cooccur

import "testing"

func TestRecordBatchSymmetric(t *testing.T) {
	m := NewMatrix()
	pairs := m.RecordBatch([]int{1, 2, 3})
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	for _, p := range [][2]int{{1, 2}, {1, 3}, {2, 3}} {
		if m.Count(p[0], p[1]) != 1 || m.Count(p[1], p[0]) != 1 {
			t.Fatalf("pair %v not symmetric: %d / %d", p, m.Count(p[0], p[1]), m.Count(p[1], p[0]))
		}
	}
}

func TestRecordBatchDuplicatesCountOnce(t *testing.T) {
	m := NewMatrix()
	pairs := m.RecordBatch([]int{4, 4, 5})
	if len(pairs) != 1 {
		t.Fatalf("expected 1 distinct pair, got %d", len(pairs))
	}
	if m.Count(4, 5) != 1 {
		t.Fatalf("expected count 1, got %d", m.Count(4, 5))
	}
	if m.Count(4, 4) != 0 {
		t.Fatalf("self-pair must not be counted, got %d", m.Count(4, 4))
	}
}

func TestSaturation(t *testing.T) {
	m := NewMatrix()
	m.counts[7*1024+8] = MaxCount - 1
	m.counts[8*1024+7] = MaxCount - 1

	m.RecordBatch([]int{7, 8})
	if m.Count(7, 8) != MaxCount {
		t.Fatalf("expected saturation at %d, got %d", MaxCount, m.Count(7, 8))
	}
	// Past the cap: stays put, no wrap.
	m.RecordBatch([]int{7, 8})
	if m.Count(7, 8) != MaxCount {
		t.Fatalf("counter moved past cap: %d", m.Count(7, 8))
	}
}

func TestCountOutOfRange(t *testing.T) {
	m := NewMatrix()
	if m.Count(-1, 0) != 0 || m.Count(0, 99999) != 0 {
		t.Fatal("out-of-range lookups must return 0")
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	m := NewMatrix()
	m.RecordBatch([]int{1, 2})
	m.RecordBatch([]int{1, 2})
	m.RecordBatch([]int{2, 9})

	cells := m.ExportState()
	if len(cells) != 2 {
		t.Fatalf("expected 2 nonzero pairs, got %d", len(cells))
	}

	m2 := NewMatrix()
	m2.RestoreState(cells)
	if m2.Count(1, 2) != 2 || m2.Count(2, 1) != 2 {
		t.Fatalf("pair (1,2) lost: %d", m2.Count(1, 2))
	}
	if m2.Count(9, 2) != 1 {
		t.Fatalf("pair (2,9) lost: %d", m2.Count(9, 2))
	}
}
