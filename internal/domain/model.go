// Package domain holds the topic-domain model: detection of the dominant
// domain in an input and the per-domain score modifiers applied to the
// class score vector.
package domain

import (
	"fmt"

	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region constants

const (
	// NumDomains is the number of topic domains.
	NumDomains = 10

	// General is the identity domain: never modifies scores, wins all ties.
	General = 0
)

var domainNames = [NumDomains]string{
	"general", "technology", "finance", "health", "sports",
	"politics", "entertainment", "science", "travel", "food",
}

// Name returns the domain's label, or "unknown" when out of range.
func Name(d int) string {
	if d < 0 || d >= NumDomains {
		return "unknown"
	}
	return domainNames[d]
}

// #endregion constants

// #region modifier

// Modifier biases the class score vector for one domain.
type Modifier struct {
	Bias      [vocab.NumClasses]int32
	Intensity int32 // unsigned scalar; 0 disables the modifier
}

// #endregion modifier

// #region model

// Model holds one modifier per domain. All intensities start at zero, so
// a fresh model passes every score vector through unchanged.
type Model struct {
	mods [NumDomains]Modifier
}

// NewModel returns a model with neutral modifiers for every domain.
func NewModel() *Model { return &Model{} }

// Modifier returns the configured modifier for a domain.
func (m *Model) Modifier(d int) Modifier {
	if d < 0 || d >= NumDomains {
		return Modifier{}
	}
	return m.mods[d]
}

// SetModifier configures one domain's bias array and intensity.
func (m *Model) SetModifier(d int, mod Modifier) error {
	if d < 0 || d >= NumDomains {
		return fmt.Errorf("domain %d outside [0, %d)", d, NumDomains)
	}
	if mod.Intensity < 0 {
		return fmt.Errorf("domain %d intensity %d must not be negative", d, mod.Intensity)
	}
	m.mods[d] = mod
	return nil
}

// #endregion model

// #region detect

// Detect accumulates each token's domain strength under its domain tag and
// returns the domain with the strictly highest total. Ties keep the
// lowest-indexed domain already holding the lead; an input with no tagged
// strength lands on General.
func Detect(v *vocab.Store, tokens []int) int {
	var scores [NumDomains]int64
	for _, id := range tokens {
		md, ok := v.Metadata(id)
		if !ok {
			continue
		}
		if md.DomainTag < 0 || md.DomainTag >= NumDomains {
			continue
		}
		if md.DomainStrength != 0 {
			scores[md.DomainTag] += int64(md.DomainStrength)
		}
	}

	best := General
	for d := 1; d < NumDomains; d++ {
		if scores[d] > scores[best] {
			best = d
		}
	}
	return best
}

// #endregion detect

// #region apply

// Apply adds bias[class] × intensity × 10 to each class score. The General
// domain and zero-intensity modifiers pass scores through unchanged.
func (m *Model) Apply(detected int, scores *[vocab.NumClasses]int64) {
	if detected == General || detected < 0 || detected >= NumDomains {
		return
	}
	mod := m.mods[detected]
	if mod.Intensity == 0 {
		return
	}
	for c := 0; c < vocab.NumClasses; c++ {
		scores[c] += int64(mod.Bias[c]) * int64(mod.Intensity) * 10
	}
}

// #endregion apply

// #region export

// ExportState returns all ten modifiers.
func (m *Model) ExportState() [NumDomains]Modifier { return m.mods }

// RestoreState replaces all modifiers.
func (m *Model) RestoreState(mods [NumDomains]Modifier) { m.mods = mods }

// #endregion export
