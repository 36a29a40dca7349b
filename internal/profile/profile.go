// Package profile holds per-caller adaptive state. Each caller gets a
// context lazily on their first successful classification; contexts are
// mutated only by the orchestrator's commit stage and are never deleted.
package profile

import "github.com/danielpatrickdp/sentiment-engine/internal/vocab"

// #region constants

const (
	// TopicSlots is the size of the recent-topic ring buffer.
	TopicSlots = 3

	// MaxHistory saturates each class-history entry.
	MaxHistory = ^uint8(0)

	// MaxInteractions saturates the total-interaction counter.
	MaxInteractions = ^uint16(0)

	// sentimentBiasStep scales the bias adjustment per class.
	sentimentBiasStep = 20

	// historyReinforceStep scales the class-history reinforcement.
	historyReinforceStep = 5
)

// #endregion constants

// #region types

// FeedbackRecord is one verdict a caller gave on a past classification.
// Score is +1 for a confirmed outcome, -1 for a rejected one.
type FeedbackRecord struct {
	Class     int
	Score     int32
	CreatedAt int64
}

// UserContext is one caller's adaptive state. A zero value is a valid
// fresh context.
type UserContext struct {
	LastInteraction int64 // unix seconds; 0 = never interacted
	LastToken       int
	Topics          [TopicSlots]int // index 0 most recent; 0 counts as empty
	History         [vocab.NumClasses]uint8
	Interactions    uint16
	SentimentBias   int32
	PrimaryDomain   int32
	Feedback        []FeedbackRecord
}

// #endregion types

// #region adapt

// Adapt folds the caller's history into the score vector, after domain
// modifiers and before class selection. Sentiment bias pushes the three
// positive classes up and the three negative classes down (neutral stays);
// any prior interaction reinforces previously chosen classes.
func (u *UserContext) Adapt(scores *[vocab.NumClasses]int64) {
	if u.SentimentBias != 0 {
		adj := int64(u.SentimentBias) * sentimentBiasStep
		for c := 4; c <= 6; c++ {
			scores[c] += adj
		}
		for c := 0; c <= 2; c++ {
			scores[c] -= adj
		}
	}
	if u.Interactions > 0 {
		for c := 0; c < vocab.NumClasses; c++ {
			scores[c] += historyReinforceStep * int64(u.History[c])
		}
	}
}

// #endregion adapt

// #region commit

// RecordInteraction applies one successful classification's mutations:
// recency fields, the topic ring shift, and the saturating counters.
// detectedDomain updates the primary domain only when it is non-general.
func (u *UserContext) RecordInteraction(firstToken int, class vocab.Class, detectedDomain int, now int64) {
	u.LastInteraction = now
	u.LastToken = firstToken
	if detectedDomain != 0 {
		u.PrimaryDomain = int32(detectedDomain)
	}

	u.Topics[2] = u.Topics[1]
	u.Topics[1] = u.Topics[0]
	u.Topics[0] = firstToken

	if u.History[class] < MaxHistory {
		u.History[class]++
	}
	if u.Interactions < MaxInteractions {
		u.Interactions++
	}
}

// #endregion commit

// #region store

// Store maps caller identities to their contexts.
type Store struct {
	users map[string]*UserContext
}

// NewStore returns an empty profile store.
func NewStore() *Store {
	return &Store{users: make(map[string]*UserContext)}
}

// Get returns the caller's context, creating a zero-valued one on first
// use. Callers must only invoke this after validation has passed so that
// aborted calls leave no trace.
func (s *Store) Get(caller string) *UserContext {
	u, ok := s.users[caller]
	if !ok {
		u = &UserContext{}
		s.users[caller] = u
	}
	return u
}

// Peek returns the caller's context without creating one.
func (s *Store) Peek(caller string) (*UserContext, bool) {
	u, ok := s.users[caller]
	return u, ok
}

// Len returns how many callers have contexts.
func (s *Store) Len() int { return len(s.users) }

// #endregion store

// #region export

// ExportState copies every context keyed by caller.
func (s *Store) ExportState() map[string]UserContext {
	out := make(map[string]UserContext, len(s.users))
	for caller, u := range s.users {
		c := *u
		c.Feedback = append([]FeedbackRecord(nil), u.Feedback...)
		out[caller] = c
	}
	return out
}

// RestoreState replaces all contexts.
func (s *Store) RestoreState(contexts map[string]UserContext) {
	s.users = make(map[string]*UserContext, len(contexts))
	for caller, c := range contexts {
		u := c
		s.users[caller] = &u
	}
}

// #endregion export
