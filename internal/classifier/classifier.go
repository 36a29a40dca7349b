// Package classifier runs the classification pipeline: validate →
// pre-update → domain detection → embedding aggregation → per-class
// scoring → modulation → decision → commit. The scoring stages are a pure
// function of the stores' state after pre-update, which is what makes a
// call reproducible from a snapshot.
package classifier

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/sentiment-engine/internal/cooccur"
	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/fixed"
	"github.com/danielpatrickdp/sentiment-engine/internal/profile"
	"github.com/danielpatrickdp/sentiment-engine/internal/similarity"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region constants

const (
	// MinInputTokens and MaxInputTokens bound one call's input length.
	MinInputTokens = 1
	MaxInputTokens = 16

	// RecencyWindowSeconds is the window for the last-interaction term.
	RecencyWindowSeconds = 3600

	// confidenceShift places the winning class's shifted score at exactly
	// this value before normalization.
	confidenceShift = 1000

	sentimentScoreFactor = 15
	recencyDivisor       = 10
	topicDivisor         = 20
)

// #endregion constants

// #region errors

// ValidationError names the input constraint a rejected call violated.
// A call returning one has mutated nothing.
type ValidationError struct {
	Constraint string
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Constraint, e.Detail)
}

// #endregion errors

// #region orchestrator

// Orchestrator coordinates one classification call over the shared
// stores. It performs no locking; the engine serializes calls.
type Orchestrator struct {
	vocab   *vocab.Store
	cooccur *cooccur.Matrix
	domains *domain.Model
	sim     *similarity.Engine
}

// New wires an orchestrator over the shared stores.
func New(v *vocab.Store, m *cooccur.Matrix, d *domain.Model) *Orchestrator {
	return &Orchestrator{
		vocab:   v,
		cooccur: m,
		domains: d,
		sim:     similarity.NewEngine(v, m),
	}
}

// Result is the outcome of one successful classification.
type Result struct {
	Class      vocab.Class
	Confidence int64
	Domain     int
	Input      string // reconstructed word sequence, for observability
	Scores     [vocab.NumClasses]int64
}

// #endregion orchestrator

// #region validate

// Validate checks one call's input against the vocabulary. Any violation
// aborts the call before a single counter moves.
func (o *Orchestrator) Validate(tokens []int) error {
	if len(tokens) < MinInputTokens || len(tokens) > MaxInputTokens {
		return &ValidationError{
			Constraint: "input_length",
			Detail:     fmt.Sprintf("%d tokens outside [%d, %d]", len(tokens), MinInputTokens, MaxInputTokens),
		}
	}
	size := o.vocab.Size()
	if size == 0 {
		return &ValidationError{Constraint: "vocabulary_empty", Detail: "no tokens defined"}
	}
	for i, id := range tokens {
		if id < 0 || id >= size {
			return &ValidationError{
				Constraint: "token_id",
				Detail:     fmt.Sprintf("token %d at position %d outside vocabulary of %d", id, i, size),
			}
		}
	}
	return nil
}

// #endregion validate

// #region classify

// Classify runs the whole pipeline for one caller. The user context is
// read during scoring and mutated only in the final commit; global
// statistics and notifications are the engine's responsibility.
func (o *Orchestrator) Classify(u *profile.UserContext, tokens []int, now int64) (Result, error) {
	if err := o.Validate(tokens); err != nil {
		return Result{}, err
	}

	// Pre-update: usage counters, co-occurrence, input reconstruction.
	for _, id := range tokens {
		o.vocab.IncrementUsage(id)
	}
	for _, p := range o.cooccur.RecordBatch(tokens) {
		o.vocab.AddCooccurTotal(p[0], 1)
		o.vocab.AddCooccurTotal(p[1], 1)
	}
	input := o.reconstructInput(tokens)

	// Scoring: pure over post-pre-update state.
	detected, scores := o.Score(*u, tokens, now)
	class, confidence := Decide(scores)

	// Commit: the caller's adaptive state.
	u.RecordInteraction(tokens[0], class, detected, now)

	return Result{
		Class:      class,
		Confidence: confidence,
		Domain:     detected,
		Input:      input,
		Scores:     scores,
	}, nil
}

// reconstructInput joins the tokens' words for the observability event.
func (o *Orchestrator) reconstructInput(tokens []int) string {
	var b strings.Builder
	for i, id := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		w, _ := o.vocab.Word(id)
		b.WriteString(w)
	}
	return b.String()
}

// #endregion classify

// #region score

// Score computes the detected domain and the fully modulated per-class
// score vector. It takes the user context by value and mutates no store,
// so two calls over the same state return identical vectors.
func (o *Orchestrator) Score(u profile.UserContext, tokens []int, now int64) (int, [vocab.NumClasses]int64) {
	detected := domain.Detect(o.vocab, tokens)

	// Aggregate weight-scaled embeddings and sentiment.
	var aggSem [vocab.SemDims]int64
	var aggCtx [vocab.CtxDims]int64
	var totalSentiment, totalWeight int64
	for _, id := range tokens {
		md, ok := o.vocab.Metadata(id)
		if !ok {
			continue
		}
		w := int64(md.Weight)
		if md.ContextInfluence != 0 {
			w = int64(md.Weight) * int64(md.ContextInfluence)
		}
		sem := o.vocab.Semantic(id)
		ctx := o.vocab.Context(id)
		for i := range sem {
			aggSem[i] += int64(sem[i]) * w
		}
		for i := range ctx {
			aggCtx[i] += int64(ctx[i]) * w
		}
		totalSentiment += int64(md.Sentiment) * w
		totalWeight += w
	}
	if totalWeight > 0 {
		for i := range aggSem {
			aggSem[i] /= totalWeight
		}
		for i := range aggCtx {
			aggCtx[i] /= totalWeight
		}
		totalSentiment /= totalWeight
	}

	// Last-interaction term. The reference adds this identically to every
	// class rather than only sentiment-aligned ones; preserved as-is.
	var recency int64
	if u.LastInteraction != 0 && now-u.LastInteraction < RecencyWindowSeconds {
		recency = o.sim.Similarity(tokens[0], u.LastToken, true) / recencyDivisor
	}

	// Topic-buffer term: every input token against every nonzero slot.
	var topic int64
	for _, slot := range u.Topics {
		if slot == 0 {
			continue
		}
		for _, id := range tokens {
			topic += o.sim.Similarity(id, slot, false) / topicDivisor
		}
	}

	var scores [vocab.NumClasses]int64
	for c := 0; c < vocab.NumClasses; c++ {
		class := vocab.Class(c)
		semW := o.vocab.ClassSemantic(class)
		ctxW := o.vocab.ClassContext(class)
		s := fixed.DotInt64(aggSem[:], semW[:]) + fixed.DotInt64(aggCtx[:], ctxW[:])
		s += totalSentiment * sentimentScoreFactor
		s += recency
		s += topic
		scores[c] = s
	}

	o.domains.Apply(detected, &scores)
	u.Adapt(&scores)
	return detected, scores
}

// #endregion score

// #region decide

// Decide picks the winning class (strictly greatest score, earlier index
// keeps ties) and computes the shift-and-normalize confidence. The winning
// class's shifted score is exactly 1000; when other classes fall far below
// the maximum their shifted values go negative, pulling the sum down, so
// confidence can exceed 1000 or turn unintuitive. That behavior is kept,
// not clamped.
func Decide(scores [vocab.NumClasses]int64) (vocab.Class, int64) {
	best := 0
	for c := 1; c < vocab.NumClasses; c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}

	var sum int64
	for c := 0; c < vocab.NumClasses; c++ {
		sum += scores[c] - scores[best] + confidenceShift
	}

	var confidence int64
	if sum > 0 {
		confidence = confidenceShift * confidenceShift / sum
	}
	return vocab.Class(best), confidence
}

// #endregion decide
