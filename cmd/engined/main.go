package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/config"
	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/feedback"
	"github.com/danielpatrickdp/sentiment-engine/internal/snapshot"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region main

func main() {
	configPath := flag.String("config", envOr("SENTIMENT_CONFIG", ""), "path to YAML config")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := snapshot.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	verdicts, err := feedback.NewStore(store.DB())
	if err != nil {
		logger.Fatal("open feedback store", zap.Error(err))
	}

	var auth authz.Authorizer = authz.AllowAll{}
	if !cfg.Access.AllowAll {
		auth = authz.NewStatic(cfg.Access.Trainers, cfg.Access.Admins)
	}
	e := engine.New(auth, events.NewZapNotifier(logger))

	versionID := restoreOrInit(e, store, cfg, logger)

	fmt.Println("Sentiment engine ready.")
	fmt.Printf("  DB: %s | active snapshot: %s | vocabulary: %d tokens\n",
		cfg.Database.Path, shortID(versionID), e.VocabSize())
	fmt.Println("Commands: classify <caller> <words...> | feedback <caller> <event-id> <correct|wrong>")
	fmt.Println("          stats | save | suspend <admin> | resume <admin> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		runCommand(e, store, verdicts, logger, line)
	}

	if id, err := store.Save(e.ExportState(), versionID); err != nil {
		logger.Error("final snapshot", zap.Error(err))
	} else {
		logger.Info("saved snapshot", zap.String("version", id))
	}
}

// #endregion main

// #region commands

func runCommand(e *engine.Engine, store *snapshot.Store, verdicts *feedback.Store, logger *zap.Logger, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "classify":
		if len(fields) < 3 {
			fmt.Println("usage: classify <caller> <words...>")
			return
		}
		runClassify(e, store, logger, fields[1], fields[2:])
	case "feedback":
		if len(fields) < 4 || (fields[3] != "correct" && fields[3] != "wrong") {
			fmt.Println("usage: feedback <caller> <event-id> <correct|wrong>")
			return
		}
		runFeedback(e, store, verdicts, fields[1], fields[2], fields[3] == "correct")
	case "stats":
		dist := e.ClassDistribution()
		fmt.Printf("total=%d correct=%d phrases=%d vocabulary=%d\n",
			e.TotalClassifications(), e.CorrectPredictions(), e.PhraseCount(), e.VocabSize())
		for c, n := range dist {
			if n > 0 {
				fmt.Printf("  %-14s %d\n", vocab.Class(c), n)
			}
		}
	case "save":
		id, err := store.Save(e.ExportState(), "")
		if err != nil {
			fmt.Printf("save failed: %v\n", err)
			return
		}
		fmt.Printf("saved snapshot %s\n", shortID(id))
	case "suspend":
		if len(fields) != 2 {
			fmt.Println("usage: suspend <admin>")
			return
		}
		if err := e.Suspend(fields[1]); err != nil {
			fmt.Printf("suspend failed: %v\n", err)
		}
	case "resume":
		if len(fields) != 2 {
			fmt.Println("usage: resume <admin>")
			return
		}
		if err := e.Resume(fields[1]); err != nil {
			fmt.Printf("resume failed: %v\n", err)
		}
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
}

func runClassify(e *engine.Engine, store *snapshot.Store, logger *zap.Logger, caller string, words []string) {
	tokens := make([]int, 0, len(words))
	for _, w := range words {
		id, ok := e.TokenID(w)
		if !ok {
			fmt.Printf("unknown word %q\n", w)
			return
		}
		tokens = append(tokens, id)
	}

	now := time.Now().Unix()
	res, err := e.Classify(caller, tokens, now)
	if err != nil {
		fmt.Printf("classify failed: %v\n", err)
		return
	}
	eventID, err := store.LogClassification(snapshot.LogEntry{
		Caller:     caller,
		Tokens:     tokens,
		Class:      res.Class,
		Confidence: res.Confidence,
		Domain:     res.Domain,
		Input:      res.Input,
		CalledAt:   now,
	})
	if err != nil {
		logger.Error("log classification", zap.Error(err))
	}
	fmt.Printf("%s  confidence=%d  domain=%s  event=%s\n",
		res.Class, res.Confidence, domain.Name(res.Domain), eventID)
}

func runFeedback(e *engine.Engine, store *snapshot.Store, verdicts *feedback.Store, caller, eventID string, correct bool) {
	entry, err := store.ClassificationByEvent(eventID)
	if err != nil {
		fmt.Printf("unknown event %q\n", eventID)
		return
	}
	if entry.Caller != caller {
		fmt.Printf("event %s belongs to %s\n", shortID(eventID), entry.Caller)
		return
	}

	applied, err := verdicts.Add(eventID, caller, int(entry.Class), correct, "")
	if err != nil {
		fmt.Printf("feedback failed: %v\n", err)
		return
	}
	if !applied {
		fmt.Printf("event %s already has a verdict\n", shortID(eventID))
		return
	}
	if err := e.RecordFeedback(caller, entry.Class, correct, time.Now().Unix()); err != nil {
		fmt.Printf("feedback failed: %v\n", err)
		return
	}
	fmt.Printf("recorded verdict for %s (%s)\n", shortID(eventID), entry.Class)
}

// #endregion commands

// #region setup

// restoreOrInit loads the active snapshot into the engine, or starts
// empty when the database is new. Config-seeded domain modifiers apply
// only to a fresh database so a restored snapshot stays authoritative.
func restoreOrInit(e *engine.Engine, store *snapshot.Store, cfg *config.Config, logger *zap.Logger) string {
	st, versionID, err := store.LoadCurrent()
	if err == nil {
		if err := e.RestoreState(st); err != nil {
			logger.Fatal("restore snapshot", zap.Error(err))
		}
		logger.Info("restored snapshot",
			zap.String("version", versionID),
			zap.Int("vocabulary", st.Vocab.Size))
		return versionID
	}

	logger.Info("no active snapshot, starting empty")
	seed := seedPrincipal(cfg)
	for _, m := range cfg.Domains {
		mod := domain.Modifier{Bias: m.Bias, Intensity: m.Intensity}
		if err := e.SetDomainModifier(seed, m.Domain, mod); err != nil {
			logger.Fatal("seed domain modifier",
				zap.Int("domain", m.Domain), zap.Error(err))
		}
	}
	return ""
}

func seedPrincipal(cfg *config.Config) string {
	if len(cfg.Access.Admins) > 0 {
		return cfg.Access.Admins[0]
	}
	if len(cfg.Access.Trainers) > 0 {
		return cfg.Access.Trainers[0]
	}
	return "local"
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level %q: %w", lc.Level, err)
	}
	zc.Level = level
	return zc.Build()
}

// #endregion setup

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func shortID(id string) string {
	if id == "" {
		return "(none)"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
