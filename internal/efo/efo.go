// Package efo builds a disease dictionary from an EFO/HP ontology SPARQL
// endpoint: every class below "disease" (EFO_0000408) or "phenotypic
// abnormality" (HP_0000118) with its label and exact/narrow synonyms.
// Abbreviation-typed synonyms are excluded at the query level, since bare
// abbreviations produce too many false matches in free text.
package efo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cognibio/biotag/pkg/biotag/dictionary"
)

const sparqlQuery = `
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX oboInOwl: <http://www.geneontology.org/formats/oboInOwl#>
PREFIX owl: <http://www.w3.org/2002/07/owl#>

SELECT DISTINCT ?term ?label ?exactSynonym ?narrowSynonym
WHERE {
    VALUES ?parentTerm {
        <http://www.ebi.ac.uk/efo/EFO_0000408>
        <http://purl.obolibrary.org/obo/HP_0000118>
    }
    ?term rdfs:subClassOf* ?parentTerm .
    ?term rdfs:label ?label .
    FILTER (?term != ?parentTerm) .

    OPTIONAL {
        ?term oboInOwl:hasExactSynonym ?exactSynonym .
        FILTER NOT EXISTS {
            ?exactSynonymAxiom
                owl:annotatedSource ?term ;
                owl:annotatedProperty oboInOwl:hasExactSynonym ;
                owl:annotatedTarget ?exactSynonym ;
                oboInOwl:hasSynonymType ?exactSynonymType .
            FILTER(?exactSynonymType IN (
                <http://purl.obolibrary.org/obo/mondo#ABBREVIATION>,
                <http://purl.obolibrary.org/obo/mondo/mondo-base#ABBREVIATION>,
                <http://purl.obolibrary.org/obo/hp#abbreviation>
            ))
        }
    }

    OPTIONAL {
        ?term oboInOwl:hasNarrowSynonym ?narrowSynonym .
        FILTER NOT EXISTS {
            ?narrowSynonymAxiom
                owl:annotatedSource ?term ;
                owl:annotatedProperty oboInOwl:hasNarrowSynonym ;
                owl:annotatedTarget ?narrowSynonym ;
                oboInOwl:hasSynonymType ?narrowSynonymType .
            FILTER(?narrowSynonymType IN (
                <http://purl.obolibrary.org/obo/mondo#ABBREVIATION>,
                <http://purl.obolibrary.org/obo/mondo/mondo-base#ABBREVIATION>,
                <http://purl.obolibrary.org/obo/hp#abbreviation>
            ))
        }
    }
}
`

// Disease is one ontology class with its collected synonyms.
type Disease struct {
	ID       string // "EFO:0000270" form
	Label    string
	Synonyms []string
}

// sparqlResults mirrors the SPARQL JSON results format.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Fetch queries the endpoint and aggregates one Disease per ontology class.
// Results are sorted by ID for deterministic artifact output.
func Fetch(ctx context.Context, client *http.Client, endpoint string) ([]Disease, error) {
	if client == nil {
		client = http.DefaultClient
	}

	q := url.Values{}
	q.Set("query", sparqlQuery)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sparql endpoint %s: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
	}

	var results sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	return aggregate(results), nil
}

func aggregate(results sparqlResults) []Disease {
	type record struct {
		label    string
		synonyms map[string]struct{}
	}
	byID := make(map[string]*record)

	for _, row := range results.Results.Bindings {
		term, ok := row["term"]
		if !ok {
			continue
		}
		id := OntologyID(term.Value)
		rec := byID[id]
		if rec == nil {
			rec = &record{synonyms: make(map[string]struct{})}
			byID[id] = rec
		}
		if label, ok := row["label"]; ok {
			rec.label = label.Value
		}
		for _, key := range []string{"exactSynonym", "narrowSynonym"} {
			if syn, ok := row[key]; ok && syn.Value != "" {
				rec.synonyms[syn.Value] = struct{}{}
			}
		}
	}

	diseases := make([]Disease, 0, len(byID))
	for id, rec := range byID {
		d := Disease{ID: id, Label: rec.label}
		for s := range rec.synonyms {
			d.Synonyms = append(d.Synonyms, s)
		}
		sort.Strings(d.Synonyms)
		diseases = append(diseases, d)
	}
	sort.Slice(diseases, func(i, j int) bool { return diseases[i].ID < diseases[j].ID })
	return diseases
}

// OntologyID converts a term IRI to the compact CURIE form:
// ".../EFO_0000270" becomes "EFO:0000270".
func OntologyID(iri string) string {
	last := iri
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		last = iri[i+1:]
	}
	return strings.Replace(last, "_", ":", 1)
}

// Entries converts diseases to dictionary artifact entries, dropping synonyms
// that are bare stopwords.
func Entries(diseases []Disease, stopwords map[string]struct{}) []dictionary.ArtifactEntry {
	entries := make([]dictionary.ArtifactEntry, 0, len(diseases))
	for _, d := range diseases {
		if d.Label == "" {
			continue
		}
		var surfaces []string
		for _, s := range d.Synonyms {
			if _, stop := stopwords[strings.ToLower(s)]; stop {
				continue
			}
			surfaces = append(surfaces, s)
		}
		entries = append(entries, dictionary.ArtifactEntry{
			ID:       d.ID,
			Label:    d.Label,
			Type:     "Disease",
			Surfaces: surfaces,
		})
	}
	return entries
}

// DefaultStopwords is a minimal English stopword set for synonym filtering.
func DefaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "of", "and", "or", "in", "on", "to", "by", "for",
		"with", "at", "as", "is", "are", "was", "were", "be", "been", "it",
		"its", "this", "that", "all", "any", "not", "no", "other",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
