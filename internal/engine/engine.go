// Package engine is the serialized facade over all shared classification
// state. Every entry point runs under one mutex, so each call executes to
// completion with no interleaving, the same single-writer model the
// replicated execution environment enforces. No reader ever observes a
// half-committed call.
package engine

import (
	"fmt"
	"log"
	"sync"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/classifier"
	"github.com/danielpatrickdp/sentiment-engine/internal/cooccur"
	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/profile"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region stats

// Stats are the engine's global monotonic counters.
type Stats struct {
	Total        uint64
	Correct      uint64 // advanced by RecordFeedback verdicts
	Distribution [vocab.NumClasses]uint64
}

// #endregion stats

// #region engine

// Engine owns the vocabulary, co-occurrence matrix, domain model, user
// contexts, and global statistics behind a single lock.
type Engine struct {
	mu sync.Mutex

	vocab    *vocab.Store
	cooccur  *cooccur.Matrix
	domains  *domain.Model
	profiles *profile.Store
	orch     *classifier.Orchestrator

	stats     Stats
	suspended bool

	auth     authz.Authorizer
	notifier events.Notifier // nil = no notifications
}

// New wires a fresh engine. notifier may be nil.
func New(auth authz.Authorizer, notifier events.Notifier) *Engine {
	v := vocab.NewStore()
	m := cooccur.NewMatrix()
	d := domain.NewModel()
	return &Engine{
		vocab:    v,
		cooccur:  m,
		domains:  d,
		profiles: profile.NewStore(),
		orch:     classifier.New(v, m, d),
		auth:     auth,
		notifier: notifier,
	}
}

// #endregion engine

// #region classify

// Classify runs one classification for a caller. Open to any caller, but
// refused while suspended. Validation failures abort with zero state
// change; a successful call commits every mutation before returning.
func (e *Engine) Classify(caller string, tokens []int, now int64) (classifier.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suspended {
		return classifier.Result{}, ErrSuspended
	}

	// Validate before touching the profile store so an aborted call does
	// not even create the caller's empty context.
	if err := e.orch.Validate(tokens); err != nil {
		return classifier.Result{}, err
	}

	u := e.profiles.Get(caller)
	res, err := e.orch.Classify(u, tokens, now)
	if err != nil {
		return classifier.Result{}, err
	}

	e.stats.Total++
	e.stats.Distribution[res.Class]++

	log.Printf("[ENGINE] classify: caller=%s class=%s confidence=%d domain=%s",
		caller, res.Class, res.Confidence, domain.Name(res.Domain))

	if e.notifier != nil {
		e.notifier.ClassificationCompleted(events.ClassificationEvent{
			Caller:     caller,
			Class:      int(res.Class),
			ClassName:  res.Class.String(),
			Confidence: res.Confidence,
			Domain:     res.Domain,
			DomainName: domain.Name(res.Domain),
			Input:      res.Input,
		})
	}
	return res, nil
}

// #endregion classify

// #region feedback

// RecordFeedback applies a caller's verdict on one of their own past
// classifications. Correct verdicts advance the accuracy counter; every
// verdict joins the caller's feedback history.
func (e *Engine) RecordFeedback(caller string, class vocab.Class, correct bool, now int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.suspended {
		return ErrSuspended
	}
	if class < 0 || int(class) >= vocab.NumClasses {
		return &classifier.ValidationError{
			Constraint: "class_range",
			Detail:     fmt.Sprintf("class %d outside [0, %d)", class, vocab.NumClasses),
		}
	}

	score := int32(-1)
	if correct {
		score = 1
		e.stats.Correct++
	}
	u := e.profiles.Get(caller)
	u.Feedback = append(u.Feedback, profile.FeedbackRecord{
		Class:     int(class),
		Score:     score,
		CreatedAt: now,
	})

	log.Printf("[ENGINE] feedback: caller=%s class=%s correct=%v", caller, class, correct)
	return nil
}

// #endregion feedback

// #region trainer-ops

// requireTrainer checks the suspend gate and trainer capability.
func (e *Engine) requireTrainer(caller string) error {
	if e.suspended {
		return ErrSuspended
	}
	if !e.auth.CanTrain(caller) {
		return fmt.Errorf("caller %q lacks trainer capability: %w", caller, ErrPermission)
	}
	return nil
}

// SetVocabulary applies a bulk token batch. Trainer capability required.
func (e *Engine) SetVocabulary(trainer string, b vocab.Batch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	if err := e.vocab.BulkSet(b); err != nil {
		return err
	}

	log.Printf("[ENGINE] vocabulary updated: trainer=%s count=%d size=%d",
		trainer, b.Len(), e.vocab.Size())

	if e.notifier != nil {
		e.notifier.VocabularyUpdated(events.VocabularyEvent{Trainer: trainer, Count: b.Len()})
	}
	return nil
}

// SetSemanticEmbedding overwrites one token's semantic embedding.
func (e *Engine) SetSemanticEmbedding(trainer string, id int, v vocab.SemVector) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	return e.vocab.SetSemantic(id, v)
}

// SetContextEmbedding overwrites one token's context embedding.
func (e *Engine) SetContextEmbedding(trainer string, id int, v vocab.CtxVector) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	return e.vocab.SetContext(id, v)
}

// SetClassWeights overwrites one class's scoring templates.
func (e *Engine) SetClassWeights(trainer string, c vocab.Class, sem vocab.SemVector, ctx vocab.CtxVector) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	return e.vocab.SetClassVectors(c, sem, ctx)
}

// SetDomainStrength overwrites one token's domain strength scalar.
func (e *Engine) SetDomainStrength(trainer string, id int, strength int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	return e.vocab.SetDomainStrength(id, strength)
}

// SetDomainModifier configures one domain's bias and intensity.
func (e *Engine) SetDomainModifier(trainer string, d int, mod domain.Modifier) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTrainer(trainer); err != nil {
		return err
	}
	return e.domains.SetModifier(d, mod)
}

// #endregion trainer-ops

// #region suspend

// Suspend pauses classification and mutation. Admin capability required.
func (e *Engine) Suspend(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.auth.CanAdminister(caller) {
		return fmt.Errorf("caller %q lacks admin capability: %w", caller, ErrPermission)
	}
	e.suspended = true
	log.Printf("[ENGINE] suspended by %s", caller)
	return nil
}

// Resume lifts a suspension. Admin capability required.
func (e *Engine) Resume(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.auth.CanAdminister(caller) {
		return fmt.Errorf("caller %q lacks admin capability: %w", caller, ErrPermission)
	}
	e.suspended = false
	log.Printf("[ENGINE] resumed by %s", caller)
	return nil
}

// Suspended reports the suspend gate.
func (e *Engine) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended
}

// #endregion suspend

// #region accessors

// Word returns the word a token id owns.
func (e *Engine) Word(id int) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.Word(id)
}

// TokenID resolves a word to its token id.
func (e *Engine) TokenID(word string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.TokenID(word)
}

// TokenMetadata returns a copy of one token's full record.
func (e *Engine) TokenMetadata(id int) (vocab.Metadata, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.Metadata(id)
}

// VocabSize returns the effective vocabulary size.
func (e *Engine) VocabSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.Size()
}

// PhraseCount returns how many tokens hold multi-word entries.
func (e *Engine) PhraseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.PhraseCount()
}

// TotalClassifications returns the global classification counter.
func (e *Engine) TotalClassifications() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Total
}

// CorrectPredictions returns the reserved correct-prediction counter.
func (e *Engine) CorrectPredictions() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Correct
}

// ClassDistribution returns the per-class classification counts.
func (e *Engine) ClassDistribution() [vocab.NumClasses]uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Distribution
}

// #endregion accessors

// #region state

// State is the engine's full data model in snapshot form.
type State struct {
	Vocab     vocab.Export
	Cooccur   []cooccur.Cell
	Profiles  map[string]profile.UserContext
	Modifiers [domain.NumDomains]domain.Modifier
	Stats     Stats
	Suspended bool
}

// ExportState copies the whole data model for the durable-state
// collaborator.
func (e *Engine) ExportState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Vocab:     e.vocab.ExportState(),
		Cooccur:   e.cooccur.ExportState(),
		Profiles:  e.profiles.ExportState(),
		Modifiers: e.domains.ExportState(),
		Stats:     e.stats,
		Suspended: e.suspended,
	}
}

// RestoreState replaces the whole data model from a snapshot.
func (e *Engine) RestoreState(st State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.vocab.RestoreState(st.Vocab); err != nil {
		return fmt.Errorf("restore vocabulary: %w", err)
	}
	e.cooccur.RestoreState(st.Cooccur)
	e.profiles.RestoreState(st.Profiles)
	e.domains.RestoreState(st.Modifiers)
	e.stats = st.Stats
	e.suspended = st.Suspended
	return nil
}

// #endregion state
