package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: the
// vocabulary and model weights to seed, the classification calls to
// replay, and the results each call must produce.
type Fixture struct {
	Description     string                  `json:"description"`
	Vocabulary      []FixtureToken          `json:"vocabulary"`
	ClassVectors    []FixtureClassVector    `json:"class_vectors"`
	DomainModifiers []FixtureDomainModifier `json:"domain_modifiers"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureToken is one vocabulary entry with its embeddings.
type FixtureToken struct {
	ID               int     `json:"id"`
	Word             string  `json:"word"`
	Sentiment        int32   `json:"sentiment"`
	Flags            uint8   `json:"flags"`
	Category         int32   `json:"category"`
	Secondary        int32   `json:"secondary"`
	Weight           int32   `json:"weight"`
	DomainTag        int32   `json:"domain_tag"`
	DomainStrength   int32   `json:"domain_strength"`
	ContextInfluence int32   `json:"context_influence"`
	Semantic         []int32 `json:"semantic,omitempty"`
	Context          []int32 `json:"context,omitempty"`
}

// FixtureClassVector carries the prototype vectors for one class.
type FixtureClassVector struct {
	Class    int     `json:"class"`
	Semantic []int32 `json:"semantic"`
	Context  []int32 `json:"context"`
}

// FixtureDomainModifier configures one domain's score adjustment.
type FixtureDomainModifier struct {
	Domain    int                     `json:"domain"`
	Bias      [vocab.NumClasses]int32 `json:"bias"`
	Intensity int32                   `json:"intensity"`
}

// FixtureInteraction is one classification call to replay.
type FixtureInteraction struct {
	StepID string `json:"step_id"`
	Caller string `json:"caller"`
	Tokens []int  `json:"tokens"`
	Now    int64  `json:"now"`
}

// FixtureExpectedResult captures the expected outcome per step.
type FixtureExpectedResult struct {
	StepID     string `json:"step_id"`
	Class      int    `json:"class"`
	Confidence int64  `json:"confidence"`
	Domain     int    `json:"domain"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToBatch converts the fixture vocabulary into a bulk-set batch.
func (f *Fixture) ToBatch() vocab.Batch {
	n := len(f.Vocabulary)
	b := vocab.Batch{
		IDs:              make([]int, n),
		Words:            make([]string, n),
		Sentiments:       make([]int32, n),
		Flags:            make([]vocab.Flags, n),
		Categories:       make([]int32, n),
		Weights:          make([]int32, n),
		DomainTags:       make([]int32, n),
		Secondaries:      make([]int32, n),
		ContextInfluence: make([]int32, n),
	}
	for i, tok := range f.Vocabulary {
		b.IDs[i] = tok.ID
		b.Words[i] = tok.Word
		b.Sentiments[i] = tok.Sentiment
		b.Flags[i] = vocab.Flags(tok.Flags)
		b.Categories[i] = tok.Category
		b.Weights[i] = tok.Weight
		b.DomainTags[i] = tok.DomainTag
		b.Secondaries[i] = tok.Secondary
		b.ContextInfluence[i] = tok.ContextInfluence
	}
	return b
}

// ToModifier converts one fixture entry to a domain modifier.
func (fm *FixtureDomainModifier) ToModifier() domain.Modifier {
	return domain.Modifier{Bias: fm.Bias, Intensity: fm.Intensity}
}

// #endregion fixture-loader
