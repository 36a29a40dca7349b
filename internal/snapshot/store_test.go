package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region helpers

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seededEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(authz.AllowAll{}, &events.Recorder{})
	batch := vocab.Batch{
		IDs:              []int{1, 2},
		Words:            []string{"great", "markets"},
		Sentiments:       []int32{4, 0},
		Flags:            []vocab.Flags{vocab.FlagPositive, vocab.Flags(0)},
		Categories:       []int32{0, 1},
		Secondaries:      []int32{0, 0},
		Weights:          []int32{5, 3},
		DomainTags:       []int32{0, 2},
		ContextInfluence: []int32{1, 1},
	}
	if err := e.SetVocabulary("trainer", batch); err != nil {
		t.Fatalf("SetVocabulary: %v", err)
	}
	var sem vocab.SemVector
	sem[0] = 1000
	if err := e.SetSemanticEmbedding("trainer", 1, sem); err != nil {
		t.Fatalf("SetSemanticEmbedding: %v", err)
	}
	if err := e.SetClassWeights("trainer", vocab.ClassPositive, sem, vocab.CtxVector{}); err != nil {
		t.Fatalf("SetClassWeights: %v", err)
	}
	mod := domain.Modifier{Intensity: 2}
	mod.Bias[6] = 3
	if err := e.SetDomainModifier("trainer", 2, mod); err != nil {
		t.Fatalf("SetDomainModifier: %v", err)
	}
	return e
}

// #endregion helpers

// #region tests

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	e := seededEngine(t)

	if _, err := e.Classify("alice", []int{1, 2}, 5000); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	st := e.ExportState()
	versionID, err := s.Save(st, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if versionID == "" {
		t.Fatal("expected a version id")
	}

	loaded, activeID, err := s.LoadCurrent()
	if err != nil {
		t.Fatalf("LoadCurrent: %v", err)
	}
	if activeID != versionID {
		t.Fatalf("active = %s, want %s", activeID, versionID)
	}

	if loaded.Vocab.Size != st.Vocab.Size {
		t.Fatalf("vocab size = %d, want %d", loaded.Vocab.Size, st.Vocab.Size)
	}
	if loaded.Vocab.Meta[1].Word != "great" || loaded.Vocab.Meta[1].UsageCount != 1 {
		t.Fatalf("token 1 round trip: %+v", loaded.Vocab.Meta[1])
	}
	if loaded.Vocab.Sem[1][0] != 1000 {
		t.Fatalf("semantic[1][0] = %d, want 1000", loaded.Vocab.Sem[1][0])
	}
	if loaded.Vocab.ClassSem[vocab.ClassPositive][0] != 1000 {
		t.Fatal("class vector lost in round trip")
	}
	if len(loaded.Cooccur) != 1 || loaded.Cooccur[0].Count != 1 {
		t.Fatalf("cooccurrence = %+v", loaded.Cooccur)
	}
	u, ok := loaded.Profiles["alice"]
	if !ok {
		t.Fatal("profile for alice missing")
	}
	if u.LastInteraction != 5000 || u.Interactions != 1 {
		t.Fatalf("profile round trip: %+v", u)
	}
	if loaded.Modifiers[2].Intensity != 2 || loaded.Modifiers[2].Bias[6] != 3 {
		t.Fatalf("modifier round trip: %+v", loaded.Modifiers[2])
	}
	if loaded.Stats.Total != 1 {
		t.Fatalf("stats total = %d, want 1", loaded.Stats.Total)
	}

	// Restoring into a fresh engine must classify identically.
	e2 := engine.New(authz.AllowAll{}, &events.Recorder{})
	if err := e2.RestoreState(loaded); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	r1, err := e.Classify("bob", []int{1}, 6000)
	if err != nil {
		t.Fatalf("Classify original: %v", err)
	}
	r2, err := e2.Classify("bob", []int{1}, 6000)
	if err != nil {
		t.Fatalf("Classify restored: %v", err)
	}
	if r1.Class != r2.Class || r1.Confidence != r2.Confidence {
		t.Fatalf("divergence after restore: (%v,%d) vs (%v,%d)",
			r1.Class, r1.Confidence, r2.Class, r2.Confidence)
	}
}

func TestVersionChainAndActivePointer(t *testing.T) {
	s := newTestStore(t)
	e := seededEngine(t)

	v1, err := s.Save(e.ExportState(), "")
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := e.Classify("alice", []int{1}, 100); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	v2, err := s.Save(e.ExportState(), v1)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	_, activeID, err := s.LoadCurrent()
	if err != nil {
		t.Fatalf("LoadCurrent: %v", err)
	}
	if activeID != v2 {
		t.Fatalf("active = %s, want %s", activeID, v2)
	}

	old, err := s.LoadVersion(v1)
	if err != nil {
		t.Fatalf("LoadVersion(v1): %v", err)
	}
	if old.Stats.Total != 0 {
		t.Fatalf("v1 stats total = %d, want 0", old.Stats.Total)
	}

	infos, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d versions, want 2", len(infos))
	}
	for _, info := range infos {
		if info.VersionID == v2 && info.ParentID != v1 {
			t.Fatalf("v2 parent = %s, want %s", info.ParentID, v1)
		}
	}
}

func TestClassificationLogOrder(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.LogClassification(LogEntry{
		Caller: "alice", Tokens: []int{1, 2}, Class: vocab.ClassPositive,
		Confidence: 1000, Domain: 2, Input: "great markets", CalledAt: 5000,
	})
	if err != nil {
		t.Fatalf("first LogClassification: %v", err)
	}
	if id1 == "" {
		t.Fatal("expected an assigned event id")
	}
	if _, err := s.LogClassification(LogEntry{
		EventID: "fixed-id", Caller: "bob", Tokens: []int{1},
		Class: vocab.ClassNeutral, Confidence: 142, CalledAt: 6000,
	}); err != nil {
		t.Fatalf("second LogClassification: %v", err)
	}

	entries, err := s.Classifications(0)
	if err != nil {
		t.Fatalf("Classifications: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].EventID != id1 || entries[1].EventID != "fixed-id" {
		t.Fatalf("order wrong: %s, %s", entries[0].EventID, entries[1].EventID)
	}
	if entries[0].Tokens[1] != 2 || entries[0].CalledAt != 5000 {
		t.Fatalf("entry round trip: %+v", entries[0])
	}

	limited, err := s.Classifications(1)
	if err != nil {
		t.Fatalf("Classifications(1): %v", err)
	}
	if len(limited) != 1 || limited[0].EventID != id1 {
		t.Fatalf("limit broken: %+v", limited)
	}
}

// #endregion tests
