// Package authz supplies the capability predicates the engine consults at
// its mutating entry points. The core never inspects identity itself; it
// only asks these yes/no questions. Granting and revoking live outside
// the engine.
package authz

// #region authorizer

// Authorizer answers capability questions for a caller identity.
type Authorizer interface {
	// CanTrain reports whether the caller may mutate vocabulary and
	// embedding state.
	CanTrain(caller string) bool

	// CanAdminister reports whether the caller may suspend and resume
	// the engine.
	CanAdminister(caller string) bool
}

// #endregion authorizer

// #region static

// Static is a fixed allow-list authorizer.
type Static struct {
	trainers map[string]bool
	admins   map[string]bool
}

// NewStatic builds an authorizer from trainer and admin allow-lists.
// Admins are implicitly trainers.
func NewStatic(trainers, admins []string) *Static {
	s := &Static{
		trainers: make(map[string]bool, len(trainers)),
		admins:   make(map[string]bool, len(admins)),
	}
	for _, t := range trainers {
		s.trainers[t] = true
	}
	for _, a := range admins {
		s.admins[a] = true
	}
	return s
}

// CanTrain reports membership in the trainer or admin list.
func (s *Static) CanTrain(caller string) bool {
	return s.trainers[caller] || s.admins[caller]
}

// CanAdminister reports membership in the admin list.
func (s *Static) CanAdminister(caller string) bool {
	return s.admins[caller]
}

// #endregion static

// #region allow-all

// AllowAll grants every capability to every caller. Test and single-user
// deployments only.
type AllowAll struct{}

func (AllowAll) CanTrain(string) bool      { return true }
func (AllowAll) CanAdminister(string) bool { return true }

// #endregion allow-all
