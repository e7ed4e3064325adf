// Command tag-corpus tags a JSONL corpus and stores the annotations in a
// SQLite database.
//
// Input lines look like {"uri": ..., "title": ..., "body": ...}. Several
// dictionaries can be given comma-separated; their matches are merged under
// the chosen overlap policy.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/cognibio/biotag/internal/htmltext"
	"github.com/cognibio/biotag/pkg/biotag"
	"github.com/cognibio/biotag/pkg/biotag/match"
	"github.com/cognibio/biotag/pkg/biotag/store"
	"github.com/cognibio/biotag/pkg/biotag/store/sqlite"
)

type corpusDoc struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func main() {
	var (
		dbPath     = flag.String("db", "", "Annotation database path (required)")
		dataPath   = flag.String("data", "", "Input JSONL corpus (required)")
		dictSels   = flag.String("dicts", "", "Comma-separated dictionaries: built-in names or artifact paths (required)")
		policyName = flag.String("policy", "leftmost-longest", "Overlap policy: all or leftmost-longest")
		stripHTML  = flag.Bool("strip-html", false, "Strip HTML markup from document bodies before tagging")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *dataPath == "" {
		log.Fatal("--data required")
	}
	if *dictSels == "" {
		log.Fatal("--dicts required")
	}

	policy, err := match.ParsePolicy(*policyName)
	if err != nil {
		log.Fatal(err)
	}

	var taggers []*biotag.Tagger
	for _, sel := range strings.Split(*dictSels, ",") {
		tagger, err := biotag.New(biotag.ResolveSelector(strings.TrimSpace(sel)))
		if err != nil {
			log.Fatal("Failed to build tagger:", err)
		}
		taggers = append(taggers, tagger)
	}

	ctx := context.Background()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	f, err := os.Open(*dataPath)
	if err != nil {
		log.Fatal("Failed to open corpus:", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	docs, mentions := 0, 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc corpusDoc
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			log.Fatal("Bad corpus line:", err)
		}

		body := doc.Body
		if *stripHTML {
			body = htmltext.Strip(body)
		}

		lists := make([][]match.Match, len(taggers))
		for i, tagger := range taggers {
			ms, err := tagger.ExtractEntities(body)
			if err != nil {
				log.Fatalf("Scan failed for %s: %v", doc.URI, err)
			}
			lists[i] = ms
		}
		merged := match.Merge(policy, lists...)

		anns := make([]store.Annotation, len(merged))
		for i, m := range merged {
			anns[i] = store.Annotation{
				Start:       m.Start,
				End:         m.End,
				Surface:     m.Surface,
				EntityID:    m.Entity.ID,
				EntityLabel: m.Entity.Label,
				EntityType:  m.Entity.Type,
			}
		}

		if err := st.SaveDoc(ctx, store.Doc{
			URI:         doc.URI,
			Title:       doc.Title,
			Text:        body,
			Annotations: anns,
		}); err != nil {
			log.Fatal("Failed to save document:", err)
		}
		docs++
		mentions += len(anns)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Failed to read corpus:", err)
	}

	log.Printf("Tagged %d documents, %d entity mentions", docs, mentions)
}
