package vocab

import (
	"errors"
	"testing"
)

// singleBatch builds a valid one-token batch for the given id and word.
func singleBatch(id int, word string) Batch {
	return Batch{
		IDs:              []int{id},
		Words:            []string{word},
		Sentiments:       []int32{2},
		Flags:            []Flags{FlagPositive},
		Categories:       []int32{1},
		Weights:          []int32{5},
		DomainTags:       []int32{0},
		Secondaries:      []int32{2},
		ContextInfluence: []int32{1},
	}
}

func TestBulkSetExtendsSize(t *testing.T) {
	s := NewStore()
	if s.Size() != 0 {
		t.Fatalf("expected empty store, size %d", s.Size())
	}
	if err := s.BulkSet(singleBatch(7, "seven")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if s.Size() != 8 {
		t.Fatalf("expected size 8 after writing id 7, got %d", s.Size())
	}

	// Lower id must not shrink the vocabulary.
	if err := s.BulkSet(singleBatch(2, "two")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if s.Size() != 8 {
		t.Fatalf("expected size to stay 8, got %d", s.Size())
	}
}

func TestBulkSetMismatchedArraysRejected(t *testing.T) {
	s := NewStore()
	if err := s.BulkSet(singleBatch(0, "zero")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	before, _ := s.Metadata(0)

	bad := singleBatch(1, "one")
	bad.Weights = []int32{5, 5} // length mismatch
	err := s.BulkSet(bad)
	if err == nil {
		t.Fatal("expected rejection for mismatched arrays")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Constraint != "array_length" {
		t.Fatalf("expected array_length validation error, got %v", err)
	}

	// No partial application: size and existing entries untouched.
	if s.Size() != 1 {
		t.Fatalf("size changed on rejected batch: %d", s.Size())
	}
	after, _ := s.Metadata(0)
	if before != after {
		t.Fatalf("existing entry changed on rejected batch")
	}
}

func TestBulkSetRangeChecks(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*Batch)
		constraint string
	}{
		{"weight_low", func(b *Batch) { b.Weights[0] = 0 }, "weight_range"},
		{"weight_high", func(b *Batch) { b.Weights[0] = 11 }, "weight_range"},
		{"influence_low", func(b *Batch) { b.ContextInfluence[0] = 0 }, "context_influence_range"},
		{"domain_high", func(b *Batch) { b.DomainTags[0] = 10 }, "domain_range"},
		{"category_high", func(b *Batch) { b.Categories[0] = 9 }, "category_range"},
		{"secondary_high", func(b *Batch) { b.Secondaries[0] = 9 }, "category_range"},
		{"id_high", func(b *Batch) { b.IDs[0] = MaxTokens }, "token_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			b := singleBatch(0, "w")
			tc.mutate(&b)
			err := s.BulkSet(b)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Constraint != tc.constraint {
				t.Fatalf("expected constraint %s, got %s", tc.constraint, verr.Constraint)
			}
			if s.Size() != 0 {
				t.Fatalf("store mutated by rejected batch")
			}
		})
	}
}

func TestBulkSetAtomicMultiEntry(t *testing.T) {
	s := NewStore()
	b := Batch{
		IDs:              []int{0, 1},
		Words:            []string{"good", "bad"},
		Sentiments:       []int32{4, -4},
		Flags:            []Flags{FlagPositive, FlagNegative},
		Categories:       []int32{1, 1},
		Weights:          []int32{5, 12}, // second entry invalid
		DomainTags:       []int32{0, 0},
		Secondaries:      []int32{0, 0},
		ContextInfluence: []int32{1, 1},
	}
	if err := s.BulkSet(b); err == nil {
		t.Fatal("expected rejection")
	}
	if s.Size() != 0 {
		t.Fatalf("first entry applied despite batch rejection, size %d", s.Size())
	}
	if _, ok := s.TokenID("good"); ok {
		t.Fatal("word index mutated by rejected batch")
	}
}

func TestWordReassignment(t *testing.T) {
	s := NewStore()
	if err := s.BulkSet(singleBatch(0, "good")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if err := s.BulkSet(singleBatch(0, "great")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if _, ok := s.TokenID("good"); ok {
		t.Fatal("stale word still resolves after reassignment")
	}
	id, ok := s.TokenID("great")
	if !ok || id != 0 {
		t.Fatalf("expected great → 0, got %d (%v)", id, ok)
	}
}

func TestPhraseCount(t *testing.T) {
	s := NewStore()
	if err := s.BulkSet(singleBatch(0, "not bad")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if err := s.BulkSet(singleBatch(1, "fine")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if s.PhraseCount() != 1 {
		t.Fatalf("expected 1 phrase, got %d", s.PhraseCount())
	}
	// Reassigning the phrase slot to a single word drops the count.
	if err := s.BulkSet(singleBatch(0, "okay")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if s.PhraseCount() != 0 {
		t.Fatalf("expected 0 phrases after reassignment, got %d", s.PhraseCount())
	}
}

func TestBulkSetPreservesCountersAndEmbeddings(t *testing.T) {
	s := NewStore()
	if err := s.BulkSet(singleBatch(0, "word")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	s.IncrementUsage(0)
	s.AddCooccurTotal(0, 3)
	var sem SemVector
	sem[0] = 1000
	if err := s.SetSemantic(0, sem); err != nil {
		t.Fatalf("SetSemantic: %v", err)
	}

	if err := s.BulkSet(singleBatch(0, "word2")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	md, _ := s.Metadata(0)
	if md.UsageCount != 1 || md.CooccurTotal != 3 {
		t.Fatalf("counters reset by overwrite: usage=%d cooccur=%d", md.UsageCount, md.CooccurTotal)
	}
	if s.Semantic(0)[0] != 1000 {
		t.Fatal("embedding reset by metadata overwrite")
	}
}

func TestSettersRejectOutOfRange(t *testing.T) {
	s := NewStore()
	if err := s.SetSemantic(0, SemVector{}); err == nil {
		t.Fatal("expected error for empty vocabulary")
	}
	if err := s.BulkSet(singleBatch(0, "w")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if err := s.SetDomainStrength(0, 10); err == nil {
		t.Fatal("expected error for strength 10")
	}
	if err := s.SetDomainStrength(0, 9); err != nil {
		t.Fatalf("SetDomainStrength: %v", err)
	}
	md, _ := s.Metadata(0)
	if md.DomainStrength != 9 {
		t.Fatalf("expected strength 9, got %d", md.DomainStrength)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := NewStore()
	if err := s.BulkSet(singleBatch(0, "not bad")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	if err := s.BulkSet(singleBatch(3, "fine")); err != nil {
		t.Fatalf("BulkSet: %v", err)
	}
	s.IncrementUsage(3)
	var sem SemVector
	sem[5] = -250
	s.SetSemantic(3, sem)
	s.SetClassVectors(ClassPositive, SemVector{0: 1000}, CtxVector{})

	e := s.ExportState()

	s2 := NewStore()
	if err := s2.RestoreState(e); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if s2.Size() != 4 {
		t.Fatalf("expected size 4, got %d", s2.Size())
	}
	if s2.PhraseCount() != 1 {
		t.Fatalf("expected phrase count 1, got %d", s2.PhraseCount())
	}
	id, ok := s2.TokenID("fine")
	if !ok || id != 3 {
		t.Fatalf("word index not rebuilt: %d %v", id, ok)
	}
	if s2.Semantic(3)[5] != -250 {
		t.Fatal("embedding lost in round trip")
	}
	if s2.ClassSemantic(ClassPositive)[0] != 1000 {
		t.Fatal("class vector lost in round trip")
	}
	md, _ := s2.Metadata(3)
	if md.UsageCount != 1 {
		t.Fatal("usage counter lost in round trip")
	}
}
