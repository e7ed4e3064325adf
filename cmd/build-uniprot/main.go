// Command build-uniprot compiles a protein dictionary artifact from a
// UniProtKB/Swiss-Prot flat file (uniprot_sprot.dat.gz).
//
// Proteins are indexed rat, then mouse, then human, so on duplicate surface
// forms the human entry wins.
package main

import (
	"flag"
	"log"

	"github.com/cognibio/biotag/internal/uniprot"
	"github.com/cognibio/biotag/pkg/biotag/dictionary"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Swiss-Prot flat file, .dat or .dat.gz (required)")
		outPath = flag.String("out", "swissprot_rat_mouse_human.jsonl.gz", "Output artifact path")
	)
	flag.Parse()

	if *inPath == "" {
		log.Fatal("--in required")
	}

	targets := map[string]uniprot.Target{
		"human": {OS: "Homo sapiens", TaxID: "9606"},
		"mouse": {OS: "Mus musculus", TaxID: "10090"},
		"rat":   {OS: "Rattus norvegicus", TaxID: "10116"},
	}

	f, err := uniprot.Open(*inPath)
	if err != nil {
		log.Fatal("Failed to open input:", err)
	}
	defer f.Close()

	byOrganism, err := uniprot.ParseDat(f, targets)
	if err != nil {
		log.Fatal("Failed to parse Swiss-Prot file:", err)
	}

	// Later entries win on duplicate surface forms, so order matters here.
	var entries []dictionary.ArtifactEntry
	for _, org := range []string{"rat", "mouse", "human"} {
		prots := byOrganism[org]
		entries = append(entries, uniprot.Entries(prots)...)
		log.Printf("%s: %d proteins", org, len(prots))
	}

	if err := dictionary.Write(*outPath, entries); err != nil {
		log.Fatal("Failed to write artifact:", err)
	}
	log.Printf("Wrote %d entries to %s", len(entries), *outPath)
}
