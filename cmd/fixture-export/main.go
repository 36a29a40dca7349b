package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/replay"
	"github.com/danielpatrickdp/sentiment-engine/internal/snapshot"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region main

// fixture-export turns a live database into a standalone replay
// fixture: the earliest snapshot's model plus the last N logged
// classifications, with the logged outcomes as expected results.
func main() {
	dbPath := flag.String("db", "", "path to sentiment.db")
	last := flag.Int("last", 10, "number of most recent log entries to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last int, outPath string) error {
	store, err := snapshot.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	var initVersionID string
	err = store.DB().QueryRow(
		`SELECT version_id FROM snapshots WHERE parent_id IS NULL ORDER BY created_at ASC LIMIT 1`,
	).Scan(&initVersionID)
	if err != nil {
		return fmt.Errorf("find initial snapshot: %w", err)
	}
	startState, err := store.LoadVersion(initVersionID)
	if err != nil {
		return fmt.Errorf("load initial snapshot: %w", err)
	}

	entries, err := store.Classifications(0)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("classification log is empty")
	}
	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}

	fmt.Printf("Found %d log entries\n", len(entries))

	fixture := buildFixture(startState, entries)
	return writeFixture(fixture, outPath)
}

// #endregion extract

// #region output

func buildFixture(st engine.State, entries []snapshot.LogEntry) replay.Fixture {
	fixture := replay.Fixture{
		Description: fmt.Sprintf("Database export: %d logged classifications", len(entries)),
	}

	for id := 0; id < st.Vocab.Size; id++ {
		md := st.Vocab.Meta[id]
		if md.Word == "" {
			continue
		}
		tok := replay.FixtureToken{
			ID:               id,
			Word:             md.Word,
			Sentiment:        md.Sentiment,
			Flags:            uint8(md.Flags),
			Category:         md.Category,
			Secondary:        md.Secondary,
			Weight:           md.Weight,
			DomainTag:        md.DomainTag,
			DomainStrength:   md.DomainStrength,
			ContextInfluence: md.ContextInfluence,
		}
		if !isZeroVector(st.Vocab.Sem[id][:]) {
			tok.Semantic = append([]int32(nil), st.Vocab.Sem[id][:]...)
		}
		if !isZeroVector(st.Vocab.Ctx[id][:]) {
			tok.Context = append([]int32(nil), st.Vocab.Ctx[id][:]...)
		}
		fixture.Vocabulary = append(fixture.Vocabulary, tok)
	}

	for c := 0; c < vocab.NumClasses; c++ {
		if isZeroVector(st.Vocab.ClassSem[c][:]) && isZeroVector(st.Vocab.ClassCtx[c][:]) {
			continue
		}
		fixture.ClassVectors = append(fixture.ClassVectors, replay.FixtureClassVector{
			Class:    c,
			Semantic: append([]int32(nil), st.Vocab.ClassSem[c][:]...),
			Context:  append([]int32(nil), st.Vocab.ClassCtx[c][:]...),
		})
	}

	for d, mod := range st.Modifiers {
		if mod.Intensity == 0 {
			continue
		}
		fixture.DomainModifiers = append(fixture.DomainModifiers, replay.FixtureDomainModifier{
			Domain:    d,
			Bias:      mod.Bias,
			Intensity: mod.Intensity,
		})
	}

	for _, entry := range entries {
		fixture.Interactions = append(fixture.Interactions, replay.FixtureInteraction{
			StepID: entry.EventID,
			Caller: entry.Caller,
			Tokens: entry.Tokens,
			Now:    entry.CalledAt,
		})
		fixture.ExpectedResults = append(fixture.ExpectedResults, replay.FixtureExpectedResult{
			StepID:     entry.EventID,
			Class:      int(entry.Class),
			Confidence: entry.Confidence,
			Domain:     entry.Domain,
		})
	}
	return fixture
}

func isZeroVector(v []int32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote fixture to %s (%d bytes, %d interactions)\n",
		outPath, len(data), len(fixture.Interactions))
	return nil
}

// #endregion output
