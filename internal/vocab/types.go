package vocab

// #region limits

const (
	// MaxTokens caps the vocabulary size.
	MaxTokens = 1024

	// SemDims is the semantic embedding length per token.
	SemDims = 24

	// CtxDims is the context embedding length per token.
	CtxDims = 8

	// NumCategories is the number of token categories.
	NumCategories = 9

	// NumClasses is the number of ordered sentiment classes.
	NumClasses = 7

	// WeightMin and WeightMax bound per-token weight and context influence.
	WeightMin = 1
	WeightMax = 10

	// DomainTagMax bounds the domain tag and domain strength (exclusive).
	DomainTagMax = 10
)

// #endregion limits

// #region vectors

// SemVector is a token's semantic embedding in fixed-point (scale 1000).
type SemVector [SemDims]int32

// CtxVector is a token's context embedding in fixed-point (scale 1000).
type CtxVector [CtxDims]int32

// #endregion vectors

// #region classes

// Class indexes the 7 ordered sentiment classes, most negative first.
type Class int

const (
	ClassVeryNegative Class = iota
	ClassNegative
	ClassSlightlyNegative
	ClassNeutral
	ClassSlightlyPositive
	ClassPositive
	ClassVeryPositive
)

var classNames = [NumClasses]string{
	"very_negative", "negative", "slightly_negative", "neutral",
	"slightly_positive", "positive", "very_positive",
}

// String returns the snake_case class name, or "unknown" when out of range.
func (c Class) String() string {
	if c < 0 || int(c) >= NumClasses {
		return "unknown"
	}
	return classNames[c]
}

// #endregion classes

// #region flags

// Flags is the non-exclusive bit-flag set carried by each token.
type Flags uint8

const (
	FlagPositive Flags = 1 << iota
	FlagNegative
	FlagEmotional
	FlagDomainSpecific
	FlagIntense
	FlagAmbiguous
	FlagSarcastic
	FlagContextDependent
)

// Has reports whether all bits in f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// #endregion flags

// #region metadata

// Metadata is the per-token categorical and sentiment record.
// UsageCount and CooccurTotal are running counters bumped by classification
// calls; everything else is written only by BulkSet or a snapshot restore.
type Metadata struct {
	Word             string
	Sentiment        int32
	Flags            Flags
	Category         int32 // primary, [0, NumCategories)
	Secondary        int32
	Weight           int32 // [WeightMin, WeightMax]
	DomainTag        int32 // [0, DomainTagMax)
	DomainStrength   int32 // [0, DomainTagMax), zero-initialized state
	ContextInfluence int32 // [WeightMin, WeightMax]
	UsageCount       uint32
	CooccurTotal     uint32
}

// #endregion metadata

// #region batch

// Batch is the parallel-array input for a bulk vocabulary upsert.
// All slices must have equal length; the whole batch is applied or rejected.
type Batch struct {
	IDs              []int
	Words            []string
	Sentiments       []int32
	Flags            []Flags
	Categories       []int32
	Weights          []int32
	DomainTags       []int32
	Secondaries      []int32
	ContextInfluence []int32
}

// Len returns the entry count (length of the IDs array).
func (b Batch) Len() int { return len(b.IDs) }

// #endregion batch
