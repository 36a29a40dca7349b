package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/sentiment-engine/internal/authz"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/events"
	"github.com/danielpatrickdp/sentiment-engine/internal/replay"
	"github.com/danielpatrickdp/sentiment-engine/internal/snapshot"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to sentiment.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/sentiment.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	e, err := replay.BuildEngine(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		return 2
	}
	results := replay.Replay(e, f)
	return printResults(results)
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-runs the classification log against the earliest
// snapshot and compares each outcome with what was recorded.
func runDBMode(dbPath string) int {
	store, err := snapshot.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	var initVersionID string
	err = store.DB().QueryRow(
		`SELECT version_id FROM snapshots WHERE parent_id IS NULL ORDER BY created_at ASC LIMIT 1`,
	).Scan(&initVersionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find initial snapshot: %v\n", err)
		return 2
	}
	startState, err := store.LoadVersion(initVersionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load initial snapshot: %v\n", err)
		return 2
	}

	entries, err := store.Classifications(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read log: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "classification log is empty")
		return 2
	}

	e := engine.New(authz.AllowAll{}, &events.Recorder{})
	if err := e.RestoreState(startState); err != nil {
		fmt.Fprintf(os.Stderr, "restore snapshot: %v\n", err)
		return 2
	}

	f := &replay.Fixture{Description: "classification log replay"}
	for _, entry := range entries {
		f.Interactions = append(f.Interactions, replay.FixtureInteraction{
			StepID: entry.EventID,
			Caller: entry.Caller,
			Tokens: entry.Tokens,
			Now:    entry.CalledAt,
		})
		f.ExpectedResults = append(f.ExpectedResults, replay.FixtureExpectedResult{
			StepID:     entry.EventID,
			Class:      int(entry.Class),
			Confidence: entry.Confidence,
			Domain:     entry.Domain,
		})
	}

	results := replay.Replay(e, f)
	return printResults(results)
}

// #endregion db-mode

// #region output

func printResults(results []replay.Result) int {
	fmt.Printf("%-38s| %-14s| %-11s| %s\n", "Step", "Class", "Confidence", "Match")
	fmt.Printf("%-38s+%-15s+%-12s+%s\n",
		"--------------------------------------", "---------------", "------------", "------")

	for _, r := range results {
		match := "DIFF"
		if r.Matched {
			match = "OK"
			if !r.Checked {
				match = "SKIP"
			}
		}
		fmt.Printf("%-38s| %-14s| %-11d| %s", r.StepID, r.Class, r.Confidence, match)
		if r.Reason != "" {
			fmt.Printf("  (%s)", r.Reason)
		}
		fmt.Println()
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d checked, %d match, %d diverge, %d failed\n",
		s.TotalSteps, s.Checked, s.Matches, s.Mismatches, s.Failures)

	if s.Mismatches > 0 || s.Failures > 0 {
		return 1
	}
	return 0
}

// #endregion output
