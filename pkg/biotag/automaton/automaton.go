// Package automaton implements a multi-pattern string-matching automaton
// (Aho-Corasick): a byte-level trie over all patterns with failure links to the
// longest proper suffix that is also a trie path. Construction is linear in the
// total pattern length and scanning is linear in the text length, independent
// of how many patterns the automaton holds.
//
// The automaton is immutable once built; adding a pattern means rebuilding.
// A built automaton may be shared by any number of concurrent scanners.
package automaton

// node is one trie state. The root (index 0) uses the dense table, every other
// state a sparse edge map.
type node struct {
	next map[byte]int32
	fail int32
	out  []int32 // indexes of all patterns ending at this state
}

// Automaton is the built matching structure.
type Automaton struct {
	nodes  []node
	root   [256]int32 // dense transitions out of the root, -1 when absent
	patLen []int
}

// Build constructs the automaton for the given patterns. Empty pattern strings
// are skipped. A nil or empty pattern set yields a degenerate automaton that
// matches nothing.
func Build(patterns []string) *Automaton {
	a := &Automaton{
		nodes:  []node{{}},
		patLen: make([]int, len(patterns)),
	}
	for i := range a.root {
		a.root[i] = -1
	}

	for idx, p := range patterns {
		a.patLen[idx] = len(p)
		if p == "" {
			continue
		}
		a.insert(p, int32(idx))
	}
	a.link()
	return a
}

func (a *Automaton) insert(p string, idx int32) {
	state := int32(0)
	for i := 0; i < len(p); i++ {
		c := p[i]
		next := a.child(state, c)
		if next < 0 {
			next = int32(len(a.nodes))
			a.nodes = append(a.nodes, node{})
			a.setChild(state, c, next)
		}
		state = next
	}
	a.nodes[state].out = append(a.nodes[state].out, idx)
}

func (a *Automaton) child(state int32, c byte) int32 {
	if state == 0 {
		return a.root[c]
	}
	if next, ok := a.nodes[state].next[c]; ok {
		return next
	}
	return -1
}

func (a *Automaton) setChild(state int32, c byte, next int32) {
	if state == 0 {
		a.root[c] = next
		return
	}
	n := &a.nodes[state]
	if n.next == nil {
		n.next = make(map[byte]int32)
	}
	n.next[c] = next
}

// link computes failure transitions breadth-first and merges output lists
// through the failure chain, so every accepting state reports all patterns
// ending there, including patterns that are proper suffixes of longer ones.
func (a *Automaton) link() {
	queue := make([]int32, 0, len(a.nodes))
	for c := 0; c < 256; c++ {
		if v := a.root[c]; v >= 0 {
			a.nodes[v].fail = 0
			queue = append(queue, v)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for c, v := range a.nodes[u].next {
			f := a.nodes[u].fail
			for f != 0 && a.child(f, c) < 0 {
				f = a.nodes[f].fail
			}
			if w := a.child(f, c); w >= 0 && w != v {
				f = w
			} else {
				f = 0
			}
			a.nodes[v].fail = f
			if len(a.nodes[f].out) > 0 {
				a.nodes[v].out = append(a.nodes[v].out, a.nodes[f].out...)
			}
			queue = append(queue, v)
		}
	}
}

// PatternLen returns the byte length of pattern idx.
func (a *Automaton) PatternLen(idx int) int {
	return a.patLen[idx]
}

// Scan runs the automaton over text, calling emit once per match with the
// exclusive end offset and the pattern index. Matches are emitted in end-offset
// order; at a given end offset, all patterns ending there are reported.
func (a *Automaton) Scan(text string, emit func(end, pattern int)) {
	state := int32(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		for state != 0 && a.child(state, c) < 0 {
			state = a.nodes[state].fail
		}
		if next := a.child(state, c); next >= 0 {
			state = next
		}
		for _, idx := range a.nodes[state].out {
			emit(i+1, int(idx))
		}
	}
}
