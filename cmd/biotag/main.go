// Command biotag tags biological entities in text read from a file or stdin.
//
// Usage:
//
//	biotag -dict efo_disease -in article.txt
//	biotag -dict my_dicts/proteins.yaml -json < article.txt
//	biotag -dict efo_disease -get "lung cancer"
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognibio/biotag/pkg/biotag"
	"github.com/cognibio/biotag/pkg/biotag/match"
)

func main() {
	var (
		dictSel    = flag.String("dict", "", "Dictionary: built-in name or artifact path (required)")
		inPath     = flag.String("in", "", "Input text file (default stdin)")
		getName    = flag.String("get", "", "Look up a single name instead of scanning")
		policyName = flag.String("policy", "all", "Overlap policy: all or leftmost-longest")
		noBoundary = flag.Bool("no-boundary", false, "Disable boundary filtering")
		maxLen     = flag.Int("max-len", 0, "Maximum input length in bytes (0 = unlimited)")
		asJSON     = flag.Bool("json", false, "Emit matches as JSON")
	)
	flag.Parse()

	if *dictSel == "" {
		log.Fatalf("--dict required (built-ins: %v)", biotag.BuiltInNames())
	}

	policy, err := match.ParsePolicy(*policyName)
	if err != nil {
		log.Fatal(err)
	}
	cfg := match.DefaultConfig()
	cfg.Policy = policy
	cfg.BoundaryFilter = !*noBoundary
	cfg.MaxTextLen = *maxLen

	tagger, err := biotag.New(biotag.ResolveSelector(*dictSel), cfg)
	if err != nil {
		log.Fatal("Failed to build tagger:", err)
	}

	if *getName != "" {
		entity, err := tagger.Get(*getName)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s\t%s\t%s\n", entity.ID, entity.Type, entity.Label)
		return
	}

	text, err := readInput(*inPath)
	if err != nil {
		log.Fatal("Failed to read input:", err)
	}

	matches, err := tagger.ExtractEntities(text)
	if err != nil {
		log.Fatal("Scan failed:", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(matches); err != nil {
			log.Fatal(err)
		}
		return
	}
	for _, m := range matches {
		fmt.Printf("%d\t%d\t%s\t%s\t%s\t%s\n",
			m.Start, m.End, m.Surface, m.Entity.ID, m.Entity.Type, m.Entity.Label)
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
