package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/snapshot"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to sentiment.db")
	last := flag.Int("last", 20, "show N most recent snapshots")
	version := flag.String("version", "", "show single snapshot detail")
	word := flag.String("word", "", "show one vocabulary entry from the active snapshot")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/sentiment.db [--last N] [--version id] [--word w] [--json]")
		os.Exit(2)
	}

	store, err := snapshot.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *word != "":
		err = runWordMode(store, *word, *jsonOut)
	case *version != "":
		err = runDetailMode(store, *version, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string `json:"version_id"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedAt string `json:"created_at"`
	VocabSize int    `json:"vocab_size"`
}

func runListMode(store *snapshot.Store, last int, jsonOut bool) error {
	infos, err := store.ListVersions(last)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshots found")
		return nil
	}

	rows := make([]listRow, len(infos))
	for i, info := range infos {
		rows[i] = listRow{
			VersionID: info.VersionID,
			ParentID:  info.ParentID,
			CreatedAt: info.CreatedAt.Format("2006-01-02T15:04:05Z"),
			VocabSize: info.VocabSize,
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-12s  %10s  %s\n", "Version", "Parent", "Vocab", "Time")
	fmt.Printf("%-12s+-%-12s+-%10s+-%s\n",
		"------------", "------------", "----------", "--------------------")
	for _, r := range rows {
		parent := "—"
		if r.ParentID != "" {
			parent = shortID(r.ParentID)
		}
		fmt.Printf("%-12s  %-12s  %10d  %s\n", shortID(r.VersionID), parent, r.VocabSize, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID    string            `json:"version_id"`
	VocabSize    int               `json:"vocab_size"`
	Phrases      int               `json:"phrases"`
	Profiles     int               `json:"profiles"`
	Pairs        int               `json:"cooccurrence_pairs"`
	Total        uint64            `json:"total_classifications"`
	Suspended    bool              `json:"suspended"`
	Distribution map[string]uint64 `json:"distribution"`
	TopTokens    []tokenUsage      `json:"top_tokens"`
	Modifiers    []modifierRow     `json:"modifiers"`
}

type tokenUsage struct {
	Word  string `json:"word"`
	Usage uint32 `json:"usage"`
}

type modifierRow struct {
	Domain    string `json:"domain"`
	Intensity int32  `json:"intensity"`
}

func runDetailMode(store *snapshot.Store, versionID string, jsonOut bool) error {
	st, err := store.LoadVersion(versionID)
	if err != nil {
		return err
	}

	out := detailOutput{
		VersionID:    versionID,
		VocabSize:    st.Vocab.Size,
		Profiles:     len(st.Profiles),
		Pairs:        len(st.Cooccur),
		Total:        st.Stats.Total,
		Suspended:    st.Suspended,
		Distribution: make(map[string]uint64),
	}
	for c, n := range st.Stats.Distribution {
		if n > 0 {
			out.Distribution[vocab.Class(c).String()] = n
		}
	}
	for _, md := range st.Vocab.Meta {
		if strings.Contains(md.Word, " ") {
			out.Phrases++
		}
		if md.UsageCount > 0 {
			out.TopTokens = append(out.TopTokens, tokenUsage{Word: md.Word, Usage: md.UsageCount})
		}
	}
	sort.Slice(out.TopTokens, func(i, j int) bool {
		if out.TopTokens[i].Usage != out.TopTokens[j].Usage {
			return out.TopTokens[i].Usage > out.TopTokens[j].Usage
		}
		return out.TopTokens[i].Word < out.TopTokens[j].Word
	})
	if len(out.TopTokens) > 10 {
		out.TopTokens = out.TopTokens[:10]
	}
	for d, mod := range st.Modifiers {
		if mod.Intensity != 0 {
			out.Modifiers = append(out.Modifiers, modifierRow{Domain: domain.Name(d), Intensity: mod.Intensity})
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:    %s\n", out.VersionID)
	fmt.Printf("Vocabulary: %d tokens (%d phrases)\n", out.VocabSize, out.Phrases)
	fmt.Printf("Profiles:   %d\n", out.Profiles)
	fmt.Printf("Pairs:      %d\n", out.Pairs)
	fmt.Printf("Total:      %d classifications\n", out.Total)
	fmt.Printf("Suspended:  %v\n", out.Suspended)

	if len(out.Distribution) > 0 {
		fmt.Printf("\nDistribution:\n")
		for c := 0; c < vocab.NumClasses; c++ {
			name := vocab.Class(c).String()
			if n, ok := out.Distribution[name]; ok {
				fmt.Printf("  %-14s %d\n", name, n)
			}
		}
	}
	if len(out.TopTokens) > 0 {
		fmt.Printf("\nMost used tokens:\n")
		for _, tu := range out.TopTokens {
			fmt.Printf("  %-20s %d\n", tu.Word, tu.Usage)
		}
	}
	if len(out.Modifiers) > 0 {
		fmt.Printf("\nActive domain modifiers:\n")
		for _, m := range out.Modifiers {
			fmt.Printf("  %-14s intensity=%d\n", m.Domain, m.Intensity)
		}
	}
	return nil
}

// #endregion detail-mode

// #region word-mode

func runWordMode(store *snapshot.Store, word string, jsonOut bool) error {
	st, versionID, err := store.LoadCurrent()
	if err != nil {
		return err
	}
	var found *vocab.Metadata
	var id int
	for i := range st.Vocab.Meta {
		if st.Vocab.Meta[i].Word == word {
			found = &st.Vocab.Meta[i]
			id = i
			break
		}
	}
	if found == nil {
		return fmt.Errorf("word %q not in snapshot %s", word, shortID(versionID))
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"id":                id,
			"word":              found.Word,
			"sentiment":         found.Sentiment,
			"category":          found.Category,
			"weight":            found.Weight,
			"domain":            domain.Name(int(found.DomainTag)),
			"domain_strength":   found.DomainStrength,
			"context_influence": found.ContextInfluence,
			"usage_count":       found.UsageCount,
			"cooccur_total":     found.CooccurTotal,
		})
	}

	fmt.Printf("Token:             %d (%s)\n", id, found.Word)
	fmt.Printf("Sentiment:         %d\n", found.Sentiment)
	fmt.Printf("Category:          %d\n", found.Category)
	fmt.Printf("Weight:            %d\n", found.Weight)
	fmt.Printf("Domain:            %s (strength %d)\n", domain.Name(int(found.DomainTag)), found.DomainStrength)
	fmt.Printf("Context influence: %d\n", found.ContextInfluence)
	fmt.Printf("Usage:             %d uses, %d co-occurrences\n", found.UsageCount, found.CooccurTotal)
	return nil
}

// #endregion word-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
