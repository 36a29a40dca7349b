// Package vocab owns the vocabulary: per-token metadata, semantic and
// context embeddings, and the per-class weight vectors used as linear
// scoring templates. Everything is fixed-size, scaled-integer state so
// that two replicas holding the same snapshot stay bit-identical.
package vocab

import (
	"fmt"
	"strings"
)

// #region store

// Store holds all vocabulary state. It performs no locking of its own;
// the engine serializes every mutating call.
type Store struct {
	meta     [MaxTokens]Metadata
	sem      [MaxTokens]SemVector
	ctx      [MaxTokens]CtxVector
	classSem [NumClasses]SemVector
	classCtx [NumClasses]CtxVector

	size        int // tokens in [0, size) are addressable
	wordIndex   map[string]int
	phraseCount int
}

// NewStore returns an empty vocabulary store.
func NewStore() *Store {
	return &Store{wordIndex: make(map[string]int)}
}

// Size returns the current effective vocabulary size.
func (s *Store) Size() int { return s.size }

// PhraseCount returns how many tokens hold multi-word entries.
func (s *Store) PhraseCount() int { return s.phraseCount }

// #endregion store

// #region bulk-set

// BulkSet validates and applies a whole batch of token definitions.
// Rejection leaves the store byte-for-byte unchanged; success replaces
// each listed token's metadata wholesale and extends the vocabulary size
// to cover the highest id written. Embeddings are untouched; they are
// addressed-by-id state owned by the embedding setters and snapshots.
func (s *Store) BulkSet(b Batch) error {
	n := b.Len()
	if n == 0 {
		return &ValidationError{Constraint: "batch_empty", Detail: "no entries"}
	}
	if n > MaxTokens {
		return &ValidationError{
			Constraint: "batch_size",
			Detail:     fmt.Sprintf("%d entries exceeds vocabulary cap %d", n, MaxTokens),
		}
	}
	if len(b.Words) != n || len(b.Sentiments) != n || len(b.Flags) != n ||
		len(b.Categories) != n || len(b.Weights) != n || len(b.DomainTags) != n ||
		len(b.Secondaries) != n || len(b.ContextInfluence) != n {
		return &ValidationError{
			Constraint: "array_length",
			Detail:     "parallel arrays must all match the id count",
		}
	}

	for i := 0; i < n; i++ {
		id := b.IDs[i]
		if id < 0 || id >= MaxTokens {
			return &ValidationError{
				Constraint: "token_id",
				Detail:     fmt.Sprintf("id %d outside [0, %d)", id, MaxTokens),
			}
		}
		if b.Weights[i] < WeightMin || b.Weights[i] > WeightMax {
			return &ValidationError{
				Constraint: "weight_range",
				Detail:     fmt.Sprintf("token %d weight %d outside [%d, %d]", id, b.Weights[i], WeightMin, WeightMax),
			}
		}
		if b.ContextInfluence[i] < WeightMin || b.ContextInfluence[i] > WeightMax {
			return &ValidationError{
				Constraint: "context_influence_range",
				Detail:     fmt.Sprintf("token %d context influence %d outside [%d, %d]", id, b.ContextInfluence[i], WeightMin, WeightMax),
			}
		}
		if b.DomainTags[i] < 0 || b.DomainTags[i] >= DomainTagMax {
			return &ValidationError{
				Constraint: "domain_range",
				Detail:     fmt.Sprintf("token %d domain tag %d outside [0, %d)", id, b.DomainTags[i], DomainTagMax),
			}
		}
		if b.Categories[i] < 0 || b.Categories[i] >= NumCategories {
			return &ValidationError{
				Constraint: "category_range",
				Detail:     fmt.Sprintf("token %d category %d outside [0, %d)", id, b.Categories[i], NumCategories),
			}
		}
		if b.Secondaries[i] < 0 || b.Secondaries[i] >= NumCategories {
			return &ValidationError{
				Constraint: "category_range",
				Detail:     fmt.Sprintf("token %d secondary category %d outside [0, %d)", id, b.Secondaries[i], NumCategories),
			}
		}
	}

	// Validation passed; apply the whole batch.
	for i := 0; i < n; i++ {
		id := b.IDs[i]
		old := s.meta[id]
		if old.Word != "" {
			if s.wordIndex[old.Word] == id {
				delete(s.wordIndex, old.Word)
			}
			if strings.Contains(old.Word, " ") {
				s.phraseCount--
			}
		}

		s.meta[id] = Metadata{
			Word:             b.Words[i],
			Sentiment:        b.Sentiments[i],
			Flags:            b.Flags[i],
			Category:         b.Categories[i],
			Secondary:        b.Secondaries[i],
			Weight:           b.Weights[i],
			DomainTag:        b.DomainTags[i],
			DomainStrength:   old.DomainStrength,
			ContextInfluence: b.ContextInfluence[i],
			UsageCount:       old.UsageCount,
			CooccurTotal:     old.CooccurTotal,
		}
		if b.Words[i] != "" {
			s.wordIndex[b.Words[i]] = id
			if strings.Contains(b.Words[i], " ") {
				s.phraseCount++
			}
		}
		if id+1 > s.size {
			s.size = id + 1
		}
	}
	return nil
}

// #endregion bulk-set

// #region accessors

// Word returns the word owned by a token id.
func (s *Store) Word(id int) (string, bool) {
	if id < 0 || id >= s.size {
		return "", false
	}
	return s.meta[id].Word, true
}

// TokenID looks up a token id by exact word.
func (s *Store) TokenID(word string) (int, bool) {
	id, ok := s.wordIndex[word]
	return id, ok
}

// Metadata returns a copy of a token's metadata record.
func (s *Store) Metadata(id int) (Metadata, bool) {
	if id < 0 || id >= s.size {
		return Metadata{}, false
	}
	return s.meta[id], true
}

// Semantic returns a token's semantic embedding (zero vector out of range).
func (s *Store) Semantic(id int) SemVector {
	if id < 0 || id >= s.size {
		return SemVector{}
	}
	return s.sem[id]
}

// Context returns a token's context embedding (zero vector out of range).
func (s *Store) Context(id int) CtxVector {
	if id < 0 || id >= s.size {
		return CtxVector{}
	}
	return s.ctx[id]
}

// ClassSemantic returns the semantic weight vector for a class.
func (s *Store) ClassSemantic(c Class) SemVector { return s.classSem[c] }

// ClassContext returns the context weight vector for a class.
func (s *Store) ClassContext(c Class) CtxVector { return s.classCtx[c] }

// #endregion accessors

// #region setters

// SetSemantic overwrites a token's semantic embedding.
func (s *Store) SetSemantic(id int, v SemVector) error {
	if id < 0 || id >= s.size {
		return &ValidationError{Constraint: "token_id", Detail: fmt.Sprintf("id %d outside vocabulary of %d", id, s.size)}
	}
	s.sem[id] = v
	return nil
}

// SetContext overwrites a token's context embedding.
func (s *Store) SetContext(id int, v CtxVector) error {
	if id < 0 || id >= s.size {
		return &ValidationError{Constraint: "token_id", Detail: fmt.Sprintf("id %d outside vocabulary of %d", id, s.size)}
	}
	s.ctx[id] = v
	return nil
}

// SetClassVectors overwrites one class's semantic and context templates.
func (s *Store) SetClassVectors(c Class, sem SemVector, ctx CtxVector) error {
	if c < 0 || int(c) >= NumClasses {
		return &ValidationError{Constraint: "class_id", Detail: fmt.Sprintf("class %d outside [0, %d)", c, NumClasses)}
	}
	s.classSem[c] = sem
	s.classCtx[c] = ctx
	return nil
}

// SetDomainStrength overwrites a token's domain strength scalar.
func (s *Store) SetDomainStrength(id int, strength int32) error {
	if id < 0 || id >= s.size {
		return &ValidationError{Constraint: "token_id", Detail: fmt.Sprintf("id %d outside vocabulary of %d", id, s.size)}
	}
	if strength < 0 || strength >= DomainTagMax {
		return &ValidationError{Constraint: "domain_range", Detail: fmt.Sprintf("strength %d outside [0, %d)", strength, DomainTagMax)}
	}
	s.meta[id].DomainStrength = strength
	return nil
}

// #endregion setters

// #region counters

// IncrementUsage bumps a token's usage counter. Out-of-range ids are the
// orchestrator's bug, not the store's; they are ignored.
func (s *Store) IncrementUsage(id int) {
	if id >= 0 && id < s.size {
		s.meta[id].UsageCount++
	}
}

// AddCooccurTotal adds to a token's running co-occurrence summary.
func (s *Store) AddCooccurTotal(id int, n uint32) {
	if id >= 0 && id < s.size {
		s.meta[id].CooccurTotal += n
	}
}

// #endregion counters

// #region export

// Export is the full vocabulary state in a snapshot-friendly shape.
type Export struct {
	Size     int
	Meta     []Metadata
	Sem      []SemVector
	Ctx      []CtxVector
	ClassSem [NumClasses]SemVector
	ClassCtx [NumClasses]CtxVector
}

// ExportState copies the addressable slice of the store.
func (s *Store) ExportState() Export {
	e := Export{
		Size:     s.size,
		Meta:     make([]Metadata, s.size),
		Sem:      make([]SemVector, s.size),
		Ctx:      make([]CtxVector, s.size),
		ClassSem: s.classSem,
		ClassCtx: s.classCtx,
	}
	copy(e.Meta, s.meta[:s.size])
	copy(e.Sem, s.sem[:s.size])
	copy(e.Ctx, s.ctx[:s.size])
	return e
}

// RestoreState replaces the store contents with an exported snapshot.
func (s *Store) RestoreState(e Export) error {
	if e.Size < 0 || e.Size > MaxTokens {
		return &ValidationError{Constraint: "batch_size", Detail: fmt.Sprintf("snapshot size %d outside [0, %d]", e.Size, MaxTokens)}
	}
	if len(e.Meta) != e.Size || len(e.Sem) != e.Size || len(e.Ctx) != e.Size {
		return &ValidationError{Constraint: "array_length", Detail: "snapshot arrays must match the declared size"}
	}

	*s = Store{wordIndex: make(map[string]int)}
	s.size = e.Size
	copy(s.meta[:], e.Meta)
	copy(s.sem[:], e.Sem)
	copy(s.ctx[:], e.Ctx)
	s.classSem = e.ClassSem
	s.classCtx = e.ClassCtx
	for id := 0; id < s.size; id++ {
		w := s.meta[id].Word
		if w == "" {
			continue
		}
		s.wordIndex[w] = id
		if strings.Contains(w, " ") {
			s.phraseCount++
		}
	}
	return nil
}

// #endregion export
