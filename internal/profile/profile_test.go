package profile

import (
	"testing"

	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

func TestAdaptSentimentBias(t *testing.T) {
	u := &UserContext{SentimentBias: 2}
	var scores [vocab.NumClasses]int64
	u.Adapt(&scores)

	for c := 0; c <= 2; c++ {
		if scores[c] != -40 {
			t.Fatalf("class %d: expected -40, got %d", c, scores[c])
		}
	}
	if scores[3] != 0 {
		t.Fatalf("neutral class must be untouched, got %d", scores[3])
	}
	for c := 4; c <= 6; c++ {
		if scores[c] != 40 {
			t.Fatalf("class %d: expected +40, got %d", c, scores[c])
		}
	}
}

func TestAdaptNegativeBias(t *testing.T) {
	u := &UserContext{SentimentBias: -1}
	var scores [vocab.NumClasses]int64
	u.Adapt(&scores)
	if scores[0] != 20 || scores[6] != -20 {
		t.Fatalf("negative bias must invert the push: %v", scores)
	}
}

func TestAdaptHistoryReinforcement(t *testing.T) {
	u := &UserContext{Interactions: 1}
	u.History[5] = 7
	var scores [vocab.NumClasses]int64
	u.Adapt(&scores)
	if scores[5] != 35 {
		t.Fatalf("expected 5×7 = 35, got %d", scores[5])
	}

	// Zero interactions: history must not apply even if populated.
	u2 := &UserContext{}
	u2.History[5] = 7
	var scores2 [vocab.NumClasses]int64
	u2.Adapt(&scores2)
	if scores2[5] != 0 {
		t.Fatalf("history applied with no prior interactions: %d", scores2[5])
	}
}

func TestTopicRingEviction(t *testing.T) {
	u := &UserContext{}
	for _, tok := range []int{11, 12, 13, 14} {
		u.RecordInteraction(tok, vocab.ClassNeutral, 0, 100)
	}
	want := [TopicSlots]int{14, 13, 12}
	if u.Topics != want {
		t.Fatalf("expected %v, got %v", want, u.Topics)
	}
}

func TestRecordInteractionFields(t *testing.T) {
	u := &UserContext{}
	u.RecordInteraction(9, vocab.ClassPositive, 3, 1234)
	if u.LastInteraction != 1234 || u.LastToken != 9 {
		t.Fatalf("recency fields wrong: %d %d", u.LastInteraction, u.LastToken)
	}
	if u.PrimaryDomain != 3 {
		t.Fatalf("expected primary domain 3, got %d", u.PrimaryDomain)
	}
	if u.History[vocab.ClassPositive] != 1 || u.Interactions != 1 {
		t.Fatalf("counters wrong: %d %d", u.History[vocab.ClassPositive], u.Interactions)
	}

	// General detection must not overwrite the primary domain.
	u.RecordInteraction(9, vocab.ClassPositive, 0, 1300)
	if u.PrimaryDomain != 3 {
		t.Fatalf("general domain overwrote primary: %d", u.PrimaryDomain)
	}
}

func TestCounterSaturation(t *testing.T) {
	u := &UserContext{Interactions: MaxInteractions}
	u.History[2] = MaxHistory
	u.RecordInteraction(1, vocab.Class(2), 0, 50)
	if u.History[2] != MaxHistory {
		t.Fatalf("history wrapped: %d", u.History[2])
	}
	if u.Interactions != MaxInteractions {
		t.Fatalf("interaction counter wrapped: %d", u.Interactions)
	}
}

func TestStoreLazyCreation(t *testing.T) {
	s := NewStore()
	if _, ok := s.Peek("alice"); ok {
		t.Fatal("Peek must not create contexts")
	}
	u := s.Get("alice")
	if u.Interactions != 0 || u.LastInteraction != 0 {
		t.Fatal("fresh context must be zero-valued")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 context, got %d", s.Len())
	}
	if s.Get("alice") != u {
		t.Fatal("Get must return the same context instance")
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := NewStore()
	u := s.Get("bob")
	u.RecordInteraction(4, vocab.ClassNegative, 2, 777)
	u.SentimentBias = -3

	s2 := NewStore()
	s2.RestoreState(s.ExportState())

	got, ok := s2.Peek("bob")
	if !ok {
		t.Fatal("bob lost in round trip")
	}
	if got.LastInteraction != 777 || got.SentimentBias != -3 || got.PrimaryDomain != 2 {
		t.Fatalf("context fields lost: %+v", got)
	}

	// Restored store must hold independent copies.
	got.SentimentBias = 9
	if s.Get("bob").SentimentBias != -3 {
		t.Fatal("restored store aliases the source")
	}
}
