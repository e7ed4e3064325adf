// Package uniprot parses UniProtKB/Swiss-Prot flat files (uniprot_sprot.dat,
// optionally gzip-compressed) into dictionary entries for selected organisms.
package uniprot

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/cognibio/biotag/pkg/biotag/dictionary"
)

// Target selects an organism, by OS-line substring or by NCBI taxonomy id.
type Target struct {
	OS    string // e.g. "Homo sapiens"
	TaxID string // e.g. "9606"
}

// Protein is one parsed Swiss-Prot entry.
type Protein struct {
	Accession     string // primary accession
	PreferredName string // RecName Full
	Synonyms      []string
}

var (
	oxRe       = regexp.MustCompile(`OX\s+NCBI_TaxID=(\d+);`)
	deTokenRe  = regexp.MustCompile(`(Full|Short)=(.+?);`)
	evidenceRe = regexp.MustCompile(`\{.*?\}`)
)

// Open opens a Swiss-Prot flat file, transparently decompressing .gz.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &gzipFile{gz: gz, f: f}, nil
}

type gzipFile struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// ParseDat reads a Swiss-Prot flat file and returns the proteins of each
// requested target, keyed the same way as targets. Records are delimited by
// "//" terminator lines; a record is kept when its OS line contains a target's
// organism string or its OX line carries a target's taxonomy id.
func ParseDat(r io.Reader, targets map[string]Target) (map[string][]Protein, error) {
	results := make(map[string][]Protein, len(targets))
	for k := range targets {
		results[k] = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		protein    Protein
		matchedKey string
		deSection  string // "RecName" or "AltName"
	)
	reset := func() {
		protein = Protein{}
		matchedKey = ""
		deSection = ""
	}
	reset()

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "AC") && protein.Accession == "":
			// primary accession is the first one on the first AC line
			fields := strings.Fields(line)
			if len(fields) > 1 {
				protein.Accession = strings.TrimSuffix(fields[1], ";")
			}

		case strings.HasPrefix(line, "OS"):
			for key, tgt := range targets {
				if tgt.OS != "" && strings.Contains(line, tgt.OS) {
					matchedKey = key
					break
				}
			}

		case strings.HasPrefix(line, "OX"):
			if m := oxRe.FindStringSubmatch(line); m != nil {
				for key, tgt := range targets {
					if tgt.TaxID == m[1] {
						matchedKey = key
						break
					}
				}
			}

		case strings.HasPrefix(line, "DE"):
			if strings.Contains(line, "RecName:") {
				deSection = "RecName"
			} else if strings.Contains(line, "AltName:") {
				deSection = "AltName"
			}
			for _, tok := range deTokenRe.FindAllStringSubmatch(line, -1) {
				name := strings.TrimSpace(evidenceRe.ReplaceAllString(tok[2], ""))
				if name == "" {
					continue
				}
				if tok[1] == "Full" && deSection == "RecName" && protein.PreferredName == "" {
					protein.PreferredName = name
				} else if deSection == "RecName" || deSection == "AltName" {
					// RecName Short and all AltName names are synonyms
					protein.Synonyms = append(protein.Synonyms, name)
				}
			}

		case strings.HasPrefix(line, "//"):
			if matchedKey != "" && protein.Accession != "" {
				results[matchedKey] = append(results[matchedKey], protein)
			}
			reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Entries converts proteins to dictionary artifact entries. Surface forms are
// the preferred name plus synonyms, deduplicated case-insensitively.
func Entries(proteins []Protein) []dictionary.ArtifactEntry {
	entries := make([]dictionary.ArtifactEntry, 0, len(proteins))
	for _, p := range proteins {
		seen := make(map[string]struct{})
		var surfaces []string
		for _, name := range append([]string{p.PreferredName}, p.Synonyms...) {
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			surfaces = append(surfaces, name)
		}
		if len(surfaces) == 0 {
			continue
		}
		entries = append(entries, dictionary.ArtifactEntry{
			ID:       "uniprot:" + p.Accession,
			Label:    p.PreferredName,
			Type:     "Protein",
			Surfaces: surfaces,
		})
	}
	return entries
}
