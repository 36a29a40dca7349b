package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region helpers

func writeFixtureFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// #endregion helpers

// #region tests

func TestLoadFixture(t *testing.T) {
	path := writeFixtureFile(t, `{
		"description": "smoke",
		"vocabulary": [
			{"id": 1, "word": "great", "sentiment": 4, "flags": 1, "weight": 5,
			 "semantic": [1000]}
		],
		"class_vectors": [
			{"class": 5, "semantic": [1000], "context": []}
		],
		"domain_modifiers": [
			{"domain": 2, "bias": [0,0,0,0,0,0,3], "intensity": 2}
		],
		"interactions": [
			{"step_id": "s1", "caller": "alice", "tokens": [1], "now": 5000}
		],
		"expected_results": [
			{"step_id": "s1", "class": 5, "confidence": 1000, "domain": 0}
		]
	}`)

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Description != "smoke" {
		t.Fatalf("description = %q", f.Description)
	}
	if len(f.Vocabulary) != 1 || f.Vocabulary[0].Word != "great" {
		t.Fatalf("vocabulary = %+v", f.Vocabulary)
	}
	if f.DomainModifiers[0].Bias[6] != 3 {
		t.Fatalf("modifier bias = %+v", f.DomainModifiers[0].Bias)
	}

	b := f.ToBatch()
	if b.Len() != 1 || b.IDs[0] != 1 || b.Flags[0] != vocab.FlagPositive {
		t.Fatalf("batch = %+v", b)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := writeFixtureFile(t, `{not json`)
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

// #endregion tests
