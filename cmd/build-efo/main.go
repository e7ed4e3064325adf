// Command build-efo compiles a disease dictionary artifact from an EFO/HP
// ontology SPARQL endpoint (e.g. a local Fuseki instance serving EFO).
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/cognibio/biotag/internal/efo"
	"github.com/cognibio/biotag/pkg/biotag/dictionary"
)

func main() {
	var (
		endpoint = flag.String("endpoint", "http://localhost:3030/efo/query", "SPARQL query endpoint")
		outPath  = flag.String("out", "efo_disease.jsonl.gz", "Output artifact path")
		timeout  = flag.Duration("timeout", 5*time.Minute, "Query timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := &http.Client{Timeout: *timeout}
	diseases, err := efo.Fetch(ctx, client, *endpoint)
	if err != nil {
		log.Fatal("SPARQL query failed:", err)
	}
	log.Printf("Fetched %d ontology terms", len(diseases))

	entries := efo.Entries(diseases, efo.DefaultStopwords())
	if err := dictionary.Write(*outPath, entries); err != nil {
		log.Fatal("Failed to write artifact:", err)
	}
	log.Printf("Wrote %d entries to %s", len(entries), *outPath)
}
