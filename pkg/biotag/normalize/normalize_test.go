package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Lung Cancer", "lung cancer"},
		{"  asthma  ", "asthma"},
		{"ALZHEIMER’S DISEASE", "alzheimer's disease"},
		{"ﬁbrosis", "fibrosis"},     // NFKC unfolds the fi ligature
		{"Ｄiabetes", "diabetes"},    // fullwidth D
		{"already lower", "already lower"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.input); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTextASCIIFastPath(t *testing.T) {
	m := Text("The Cat")
	if m.Norm != "the cat" {
		t.Errorf("Norm = %q, want %q", m.Norm, "the cat")
	}
	// Identity offsets on the ASCII path
	if m.Start(4) != 4 {
		t.Errorf("Start(4) = %d, want 4", m.Start(4))
	}
	if m.End(7) != 7 {
		t.Errorf("End(7) = %d, want 7", m.End(7))
	}
}

func TestTextOffsetMapping(t *testing.T) {
	// U+2019 is 3 bytes in the source, folded to a 1-byte apostrophe.
	src := "a’b"
	m := Text(src)
	if m.Norm != "a'b" {
		t.Fatalf("Norm = %q, want %q", m.Norm, "a'b")
	}

	if got := m.Start(0); got != 0 {
		t.Errorf("Start(0) = %d, want 0", got)
	}
	if got := m.Start(1); got != 1 {
		t.Errorf("Start(1) = %d, want 1", got)
	}
	if got := m.Start(2); got != 4 {
		t.Errorf("Start(2) = %d, want 4", got)
	}
	if got := m.End(2); got != 4 {
		t.Errorf("End(2) = %d, want 4", got)
	}
	if got := m.End(3); got != len(src) {
		t.Errorf("End(3) = %d, want %d", got, len(src))
	}

	// The apostrophe span slices back to the original curly quote.
	if got := src[m.Start(1):m.End(2)]; got != "’" {
		t.Errorf("source slice = %q, want %q", got, "’")
	}
}

func TestTextRecoversSurface(t *testing.T) {
	src := "Alzheimer’s disease progressed"
	m := Text(src)

	// "alzheimer's disease" spans the first 19 normalized bytes.
	want := "alzheimer's disease"
	if got := m.Norm[:len(want)]; got != want {
		t.Fatalf("normalized prefix = %q, want %q", got, want)
	}
	start, end := m.Start(0), m.End(len(want))
	if got := src[start:end]; got != "Alzheimer’s disease" {
		t.Errorf("recovered surface = %q", got)
	}
}
