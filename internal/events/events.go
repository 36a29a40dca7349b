// Package events defines the notification surface the engine emits on
// every successful classification and vocabulary update. Consumers are
// external monitoring; the core never reads these back.
package events

import "go.uber.org/zap"

// #region event-types

// ClassificationEvent describes one completed classification.
type ClassificationEvent struct {
	Caller     string
	Class      int
	ClassName  string
	Confidence int64
	Domain     int
	DomainName string
	Input      string
}

// VocabularyEvent describes one applied vocabulary batch.
type VocabularyEvent struct {
	Trainer string
	Count   int
}

// #endregion event-types

// #region notifier

// Notifier receives engine notifications. Implementations must not call
// back into the engine.
type Notifier interface {
	ClassificationCompleted(ClassificationEvent)
	VocabularyUpdated(VocabularyEvent)
}

// #endregion notifier

// #region zap-notifier

// ZapNotifier emits structured log lines for each notification.
type ZapNotifier struct {
	log *zap.Logger
}

// NewZapNotifier wraps a zap logger as a notifier.
func NewZapNotifier(log *zap.Logger) *ZapNotifier {
	return &ZapNotifier{log: log}
}

// ClassificationCompleted logs one classification outcome.
func (n *ZapNotifier) ClassificationCompleted(ev ClassificationEvent) {
	n.log.Info("classification",
		zap.String("caller", ev.Caller),
		zap.Int("class", ev.Class),
		zap.String("class_name", ev.ClassName),
		zap.Int64("confidence", ev.Confidence),
		zap.Int("domain", ev.Domain),
		zap.String("domain_name", ev.DomainName),
		zap.String("input", ev.Input),
	)
}

// VocabularyUpdated logs one vocabulary batch application.
func (n *ZapNotifier) VocabularyUpdated(ev VocabularyEvent) {
	n.log.Info("vocabulary_updated",
		zap.String("trainer", ev.Trainer),
		zap.Int("count", ev.Count),
	)
}

// #endregion zap-notifier

// #region recorder

// Recorder captures notifications in memory for tests and replay checks.
type Recorder struct {
	Classifications []ClassificationEvent
	Vocabulary      []VocabularyEvent
}

func (r *Recorder) ClassificationCompleted(ev ClassificationEvent) {
	r.Classifications = append(r.Classifications, ev)
}

func (r *Recorder) VocabularyUpdated(ev VocabularyEvent) {
	r.Vocabulary = append(r.Vocabulary, ev)
}

// #endregion recorder
