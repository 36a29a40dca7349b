// Package similarity computes the pairwise token affinity score that the
// classifier folds into its recency and topic terms. It reads the
// vocabulary and co-occurrence stores and mutates nothing.
package similarity

import (
	"github.com/danielpatrickdp/sentiment-engine/internal/cooccur"
	"github.com/danielpatrickdp/sentiment-engine/internal/fixed"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region bonuses

const (
	categoryMatchBonus  = 150 // identical primary categories
	secondaryMatchBonus = 75  // one token's secondary matches the other's primary
	domainMatchBonus    = 100 // same nonzero domain tag
	cooccurBonusFactor  = 5   // per co-occurrence count
	sentimentAlignBonus = 50  // both sentiments nonzero, same sign
	sentimentClashPenalty = 30
)

// #endregion bonuses

// #region engine

// Engine scores token pairs against shared vocabulary and co-occurrence
// state.
type Engine struct {
	vocab   *vocab.Store
	cooccur *cooccur.Matrix
}

// NewEngine wires a similarity engine over the shared stores.
func NewEngine(v *vocab.Store, m *cooccur.Matrix) *Engine {
	return &Engine{vocab: v, cooccur: m}
}

// #endregion engine

// #region similarity

// Similarity returns the signed affinity of two tokens. Out-of-vocabulary
// ids score 0 immediately. The semantic dot product is always included;
// the context dot product is halved and added only when includeContext
// is set.
func (e *Engine) Similarity(a, b int, includeContext bool) int64 {
	size := e.vocab.Size()
	if a < 0 || a >= size || b < 0 || b >= size {
		return 0
	}

	semA, semB := e.vocab.Semantic(a), e.vocab.Semantic(b)
	score := fixed.Dot(semA[:], semB[:])

	if includeContext {
		ctxA, ctxB := e.vocab.Context(a), e.vocab.Context(b)
		score += fixed.Dot(ctxA[:], ctxB[:]) / 2
	}

	mdA, _ := e.vocab.Metadata(a)
	mdB, _ := e.vocab.Metadata(b)

	if mdA.Category == mdB.Category {
		score += categoryMatchBonus
	} else if mdA.Secondary == mdB.Category || mdB.Secondary == mdA.Category {
		score += secondaryMatchBonus
	}

	if mdA.DomainTag != 0 && mdA.DomainTag == mdB.DomainTag {
		score += domainMatchBonus
	}

	score += cooccurBonusFactor * int64(e.cooccur.Count(a, b))

	if mdA.Sentiment != 0 && mdB.Sentiment != 0 {
		if (mdA.Sentiment > 0) == (mdB.Sentiment > 0) {
			score += sentimentAlignBonus
		} else {
			score -= sentimentClashPenalty
		}
	}

	return score
}

// #endregion similarity
