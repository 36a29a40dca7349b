// Package replay re-runs recorded classification calls against a freshly
// seeded engine and checks that the outcomes match, exercising the
// engine's determinism guarantee end to end.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region types

// Result captures the outcome of replaying one interaction.
type Result struct {
	StepID     string
	Caller     string
	Class      vocab.Class
	Confidence int64
	Domain     int
	Checked    bool // an expectation existed for this step
	Matched    bool
	Reason     string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps int
	Checked    int
	Matches    int
	Mismatches int
	Failures   int // calls that errored instead of classifying
}

// #endregion types

// #region build

const fixtureTrainer = "replay-harness"

// BuildEngine constructs an engine seeded with the fixture's
// vocabulary, embeddings, class vectors, and domain modifiers.
func BuildEngine(f *Fixture) (*engine.Engine, error) {
	e := engine.New(authz.AllowAll{}, &events.Recorder{})
	if err := Seed(e, f, fixtureTrainer); err != nil {
		return nil, err
	}
	return e, nil
}

// Seed applies the fixture's vocabulary, embeddings, class vectors, and
// domain modifiers to an existing engine under the given trainer.
func Seed(e *engine.Engine, f *Fixture, trainer string) error {
	if err := e.SetVocabulary(trainer, f.ToBatch()); err != nil {
		return fmt.Errorf("seed vocabulary: %w", err)
	}
	for _, tok := range f.Vocabulary {
		if tok.Semantic != nil {
			var v vocab.SemVector
			copy(v[:], tok.Semantic)
			if err := e.SetSemanticEmbedding(trainer, tok.ID, v); err != nil {
				return fmt.Errorf("seed semantic %d: %w", tok.ID, err)
			}
		}
		if tok.Context != nil {
			var v vocab.CtxVector
			copy(v[:], tok.Context)
			if err := e.SetContextEmbedding(trainer, tok.ID, v); err != nil {
				return fmt.Errorf("seed context %d: %w", tok.ID, err)
			}
		}
		if tok.DomainStrength != 0 {
			if err := e.SetDomainStrength(trainer, tok.ID, tok.DomainStrength); err != nil {
				return fmt.Errorf("seed domain strength %d: %w", tok.ID, err)
			}
		}
	}
	for _, cv := range f.ClassVectors {
		var sem vocab.SemVector
		var ctx vocab.CtxVector
		copy(sem[:], cv.Semantic)
		copy(ctx[:], cv.Context)
		if err := e.SetClassWeights(trainer, vocab.Class(cv.Class), sem, ctx); err != nil {
			return fmt.Errorf("seed class vector %d: %w", cv.Class, err)
		}
	}
	for _, fm := range f.DomainModifiers {
		if err := e.SetDomainModifier(trainer, fm.Domain, fm.ToModifier()); err != nil {
			return fmt.Errorf("seed modifier %d: %w", fm.Domain, err)
		}
	}
	return nil
}

// #endregion build

// #region replay

// Replay runs every interaction through the engine in order and checks
// each against its expected result, if one exists. A call error is a
// failure, not a fatal stop.
func Replay(e *engine.Engine, f *Fixture) []Result {
	expected := make(map[string]FixtureExpectedResult, len(f.ExpectedResults))
	for _, exp := range f.ExpectedResults {
		expected[exp.StepID] = exp
	}

	results := make([]Result, 0, len(f.Interactions))
	for _, inter := range f.Interactions {
		res := Result{StepID: inter.StepID, Caller: inter.Caller}

		out, err := e.Classify(inter.Caller, inter.Tokens, inter.Now)
		if err != nil {
			res.Reason = fmt.Sprintf("classify: %v", err)
			results = append(results, res)
			continue
		}
		res.Class = out.Class
		res.Confidence = out.Confidence
		res.Domain = out.Domain

		exp, ok := expected[inter.StepID]
		if !ok {
			res.Matched = true
			results = append(results, res)
			continue
		}
		res.Checked = true
		switch {
		case int(out.Class) != exp.Class:
			res.Reason = fmt.Sprintf("class %d, expected %d", out.Class, exp.Class)
		case out.Confidence != exp.Confidence:
			res.Reason = fmt.Sprintf("confidence %d, expected %d", out.Confidence, exp.Confidence)
		case out.Domain != exp.Domain:
			res.Reason = fmt.Sprintf("domain %d, expected %d", out.Domain, exp.Domain)
		default:
			res.Matched = true
		}
		results = append(results, res)
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		switch {
		case !r.Matched && !r.Checked && r.Reason != "":
			s.Failures++
		case r.Checked && r.Matched:
			s.Checked++
			s.Matches++
		case r.Checked:
			s.Checked++
			s.Mismatches++
		}
	}
	return s
}

// #endregion replay
