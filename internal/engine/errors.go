package engine

import (
	"errors"

	"github.com/danielpatrickdp/sentiment-engine/internal/classifier"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region sentinels

// ErrSuspended gates every classification and mutation while the engine
// is paused.
var ErrSuspended = errors.New("engine suspended")

// ErrPermission marks a caller lacking the capability an entry point
// requires.
var ErrPermission = errors.New("permission denied")

// #endregion sentinels

// #region validation

// IsValidation reports whether err is a validation failure from either
// the vocabulary store or the classifier. Validation failures always
// leave engine state untouched.
func IsValidation(err error) bool {
	var vErr *vocab.ValidationError
	var cErr *classifier.ValidationError
	return errors.As(err, &vErr) || errors.As(err, &cErr)
}

// #endregion validation
