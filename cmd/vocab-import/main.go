package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/replay"
	"github.com/danielpatrickdp/sentiment-engine/internal/snapshot"
)

// #region main

// vocab-import loads a vocabulary file (fixture format, interactions
// ignored) into the active snapshot and writes a new snapshot version.
func main() {
	dbPath := flag.String("db", envOr("SENTIMENT_DB", "sentiment.db"), "path to sentiment.db")
	filePath := flag.String("file", "", "vocabulary JSON to import")
	trainer := flag.String("trainer", "vocab-import", "principal recorded for the import")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: vocab-import --file vocab.json [--db path] [--trainer name]")
		os.Exit(2)
	}

	fmt.Println("=== Vocabulary Import ===")
	fmt.Printf("  DB: %s | File: %s\n", *dbPath, *filePath)

	store, err := snapshot.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	f, err := replay.LoadFixture(*filePath)
	if err != nil {
		log.Fatalf("load vocabulary file: %v", err)
	}
	if len(f.Vocabulary) == 0 {
		log.Fatalf("%s contains no vocabulary entries", *filePath)
	}

	e := engine.New(authz.AllowAll{}, &events.Recorder{})
	parentID := ""
	if st, versionID, err := store.LoadCurrent(); err == nil {
		if err := e.RestoreState(st); err != nil {
			log.Fatalf("restore snapshot: %v", err)
		}
		parentID = versionID
		fmt.Printf("  Base snapshot: %s (%d tokens)\n", shortID(versionID), st.Vocab.Size)
	} else {
		fmt.Println("  No active snapshot, importing into an empty engine")
	}

	before := e.VocabSize()
	if err := replay.Seed(e, f, *trainer); err != nil {
		log.Fatalf("import: %v", err)
	}

	versionID, err := store.Save(e.ExportState(), parentID)
	if err != nil {
		log.Fatalf("save snapshot: %v", err)
	}

	fmt.Printf("\n=== Import Complete ===\n")
	fmt.Printf("  Entries applied: %d\n", len(f.Vocabulary))
	fmt.Printf("  Class vectors:   %d\n", len(f.ClassVectors))
	fmt.Printf("  Modifiers:       %d\n", len(f.DomainModifiers))
	fmt.Printf("  Vocabulary size: %d -> %d\n", before, e.VocabSize())
	fmt.Printf("  New snapshot:    %s\n", shortID(versionID))
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
