package match

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognibio/biotag/pkg/biotag/dictionary"
	"github.com/cognibio/biotag/pkg/biotag/internalerr"
)

func buildDict(t *testing.T, entries map[string]dictionary.Entity) *dictionary.Dictionary {
	t.Helper()
	b := dictionary.NewBuilder()
	for surface, e := range entries {
		if err := b.Add(surface, e); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

var (
	d1 = dictionary.Entity{ID: "D1", Label: "diabetes", Type: "Disease"}
	d2 = dictionary.Entity{ID: "D2", Label: "diabetes mellitus", Type: "Disease"}
)

func TestScanSingleSurfaceForm(t *testing.T) {
	// Scanning a text that is exactly one surface form yields exactly one
	// match spanning the full text.
	d := buildDict(t, map[string]dictionary.Entity{
		"asthma":   {ID: "EFO:0000270", Type: "Disease"},
		"diabetes": d1,
	})
	s := NewScanner(d, DefaultConfig())

	for _, surface := range []string{"asthma", "diabetes"} {
		matches, err := s.Scan(surface)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Fatalf("Scan(%q) returned %d matches, want 1", surface, len(matches))
		}
		m := matches[0]
		if m.Start != 0 || m.End != len(surface) {
			t.Errorf("Scan(%q) span = [%d:%d], want [0:%d]", surface, m.Start, m.End, len(surface))
		}
		if m.Surface != surface {
			t.Errorf("Scan(%q) surface = %q", surface, m.Surface)
		}
	}
}

func TestScanNoMatchIsSuccess(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{"asthma": {ID: "X:1"}})
	s := NewScanner(d, DefaultConfig())

	matches, err := s.Scan("nothing relevant in this text")
	if err != nil {
		t.Fatalf("no-match scan should succeed, got %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want none", matches)
	}
}

func TestScanOverlapAllPolicy(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{
		"infection":           {ID: "I1", Type: "Disease"},
		"bacterial infection": {ID: "I2", Type: "Disease"},
	})
	s := NewScanner(d, DefaultConfig())

	text := "the bacterial infection spread"
	matches, err := s.Scan(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}
	for _, m := range matches {
		if m.Start < 0 || m.End > len(text) || m.Start >= m.End {
			t.Errorf("bad span [%d:%d]", m.Start, m.End)
		}
		if text[m.Start:m.End] != m.Surface {
			t.Errorf("surface %q does not slice back from [%d:%d]", m.Surface, m.Start, m.End)
		}
	}
	if matches[0].Surface != "bacterial infection" || matches[1].Surface != "infection" {
		t.Errorf("matches = %v", matches)
	}
}

func TestScanLeftmostLongestPolicy(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{
		"infection":           {ID: "I1"},
		"bacterial infection": {ID: "I2"},
	})
	cfg := DefaultConfig()
	cfg.Policy = PolicyLeftmostLongest
	s := NewScanner(d, cfg)

	matches, err := s.Scan("the bacterial infection spread")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(matches), matches)
	}
	if matches[0].Surface != "bacterial infection" {
		t.Errorf("kept %q, want the longer match", matches[0].Surface)
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	// The concrete scenario from the original docs: "Diabetes mellitus..."
	d := buildDict(t, map[string]dictionary.Entity{
		"diabetes":          d1,
		"diabetes mellitus": d2,
	})
	s := NewScanner(d, DefaultConfig())

	text := "Diabetes mellitus is a chronic condition."
	matches, err := s.Scan(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(matches), matches)
	}

	// Sorted start-ascending, longer first.
	if matches[0].Surface != "Diabetes mellitus" || matches[0].Start != 0 || matches[0].End != 17 {
		t.Errorf("match[0] = %+v", matches[0])
	}
	if matches[0].Entity.ID != "D2" {
		t.Errorf("match[0] entity = %q, want D2", matches[0].Entity.ID)
	}
	if matches[1].Surface != "Diabetes" || matches[1].Start != 0 || matches[1].End != 8 {
		t.Errorf("match[1] = %+v", matches[1])
	}
	if matches[1].Entity.ID != "D1" {
		t.Errorf("match[1] entity = %q, want D1", matches[1].Entity.ID)
	}
}

func TestScanBoundaryFilter(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{"diabetes": d1})

	tests := []struct {
		name    string
		text    string
		matches int
	}{
		{"word boundaries", "diabetes is chronic", 1},
		{"embedded in word", "prediabetes is different", 0},
		{"suffix of word", "diabetesX", 0},
		{"colon after", "diabetes: a chronic condition", 1},
		{"comma after", "asthma, diabetes, and more", 1},
		{"angle bracket after", "diabetes>stage2", 0},
		{"paren open after", "diabetes(type 2)", 0},
		{"paren close before", ")diabetes here", 0},
		{"slash boundaries", "asthma/diabetes/copd", 1},
		{"entire text", "diabetes", 1},
	}
	s := NewScanner(d, DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := s.Scan(tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if len(matches) != tt.matches {
				t.Errorf("Scan(%q) = %v, want %d matches", tt.text, matches, tt.matches)
			}
		})
	}
}

func TestScanBoundaryFilterOff(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{"diabetes": d1})
	cfg := DefaultConfig()
	cfg.BoundaryFilter = false
	s := NewScanner(d, cfg)

	matches, err := s.Scan("prediabetes")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("with filtering off, embedded match should be returned: %v", matches)
	}
	if matches[0].Start != 3 || matches[0].End != 11 {
		t.Errorf("span = [%d:%d], want [3:11]", matches[0].Start, matches[0].End)
	}
}

func TestScanCurlyApostrophe(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{
		"alzheimer's disease": {ID: "EFO:0000249", Type: "Disease"},
	})
	s := NewScanner(d, DefaultConfig())

	text := "Alzheimer’s disease progresses slowly"
	matches, err := s.Scan(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %v, want 1 match", matches)
	}
	if matches[0].Surface != "Alzheimer’s disease" {
		t.Errorf("surface = %q", matches[0].Surface)
	}
}

func TestScanIdempotent(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{
		"diabetes":          d1,
		"diabetes mellitus": d2,
		"asthma":            {ID: "A1"},
	})
	s := NewScanner(d, DefaultConfig())

	text := "Diabetes mellitus and asthma are both chronic."
	first, err := s.Scan(text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan(text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scan is not deterministic:\n%v\n%v", first, second)
	}
}

func TestScanMaxTextLen(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{"asthma": {ID: "X:1"}})
	cfg := DefaultConfig()
	cfg.MaxTextLen = 10
	s := NewScanner(d, cfg)

	_, err := s.Scan("this text is longer than ten bytes")
	if !errors.Is(err, internalerr.ErrScan) {
		t.Errorf("err = %v, want ErrScan", err)
	}
}

func TestScanInvalidUTF8(t *testing.T) {
	d := buildDict(t, map[string]dictionary.Entity{"asthma": {ID: "X:1"}})
	s := NewScanner(d, DefaultConfig())

	_, err := s.Scan("asthma \xff\xfe")
	if !errors.Is(err, internalerr.ErrScan) {
		t.Errorf("err = %v, want ErrScan", err)
	}
}

func TestScanEmptyDictionary(t *testing.T) {
	s := NewScanner(dictionary.NewBuilder().Build(), DefaultConfig())
	matches, err := s.Scan("any text whatsoever")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("empty dictionary should match nothing, got %v", matches)
	}
}

func TestMerge(t *testing.T) {
	diseases := []Match{
		{Start: 4, End: 23, Surface: "bacterial infection", Entity: dictionary.Entity{ID: "I2", Type: "Disease"}},
		{Start: 14, End: 23, Surface: "infection", Entity: dictionary.Entity{ID: "I1", Type: "Disease"}},
	}
	chemicals := []Match{
		{Start: 30, End: 37, Surface: "aspirin", Entity: dictionary.Entity{ID: "CHEMBL25", Type: "Chemical"}},
	}

	merged := Merge(PolicyLeftmostLongest, diseases, chemicals)
	if len(merged) != 2 {
		t.Fatalf("merged = %v, want 2 matches", merged)
	}
	if merged[0].Entity.ID != "I2" || merged[1].Entity.ID != "CHEMBL25" {
		t.Errorf("merged = %v", merged)
	}

	all := Merge(PolicyAll, diseases, chemicals)
	if len(all) != 3 {
		t.Errorf("PolicyAll merge dropped matches: %v", all)
	}
}

func TestMergeKeepsExactSpanDuplicates(t *testing.T) {
	// The same span recognized by two dictionaries keeps both entities.
	a := []Match{{Start: 0, End: 7, Surface: "insulin", Entity: dictionary.Entity{ID: "uniprot:P01308", Type: "Protein"}}}
	b := []Match{{Start: 0, End: 7, Surface: "insulin", Entity: dictionary.Entity{ID: "CHEMBL1201631", Type: "Chemical"}}}

	merged := Merge(PolicyLeftmostLongest, a, b)
	if len(merged) != 2 {
		t.Fatalf("merged = %v, want both entities kept", merged)
	}
}

func TestPolicyString(t *testing.T) {
	if PolicyAll.String() != "all" {
		t.Errorf("PolicyAll.String() = %q", PolicyAll.String())
	}
	if PolicyLeftmostLongest.String() != "leftmost-longest" {
		t.Errorf("PolicyLeftmostLongest.String() = %q", PolicyLeftmostLongest.String())
	}
}

func TestParsePolicy(t *testing.T) {
	for _, want := range []Policy{PolicyAll, PolicyLeftmostLongest} {
		got, err := ParsePolicy(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ParsePolicy(%q) = %v", want.String(), got)
		}
	}
	if _, err := ParsePolicy("bogus"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
