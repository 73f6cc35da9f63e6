package amr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Path is a positional address in the annotation tree. The root is [0];
// each child appends its 0-based position among its siblings.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// ParsePath converts "0.1.0" into a Path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(s, ".")
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid path %q", s)
		}
		p[i] = n
	}
	return p, nil
}

func (p Path) clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// renumberAfter adjusts p for the removal of the node at removed.
// Paths at or below the removed node are dropped (ok=false); later siblings
// and their descendants shift down by one.
func (p Path) renumberAfter(removed Path) (Path, bool) {
	depth := len(removed) - 1
	if depth < 0 || len(p) <= depth {
		return p, true
	}
	for i := 0; i < depth; i++ {
		if p[i] != removed[i] {
			return p, true
		}
	}
	switch {
	case p[depth] == removed[depth]:
		return nil, false
	case p[depth] > removed[depth]:
		out := p.clone()
		out[depth]--
		return out, true
	}
	return p, true
}

// PathEntry is one label occupying a tree position.
type PathEntry struct {
	Path  Path
	Label string
}

// PathTable maps structural paths to the concept or constant at that position.
type PathTable struct {
	entries []PathEntry
	byKey   map[string]int
}

// NewPathTable creates an empty table.
func NewPathTable() *PathTable {
	return &PathTable{byKey: make(map[string]int)}
}

// Set records label at p, replacing any previous label.
func (t *PathTable) Set(p Path, label string) {
	key := p.String()
	if i, ok := t.byKey[key]; ok {
		t.entries[i].Label = label
		return
	}
	t.byKey[key] = len(t.entries)
	t.entries = append(t.entries, PathEntry{Path: p.clone(), Label: label})
}

// Lookup returns the label at a dotted path.
func (t *PathTable) Lookup(path string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.byKey[path]
	if !ok {
		return "", false
	}
	return t.entries[i].Label, true
}

// Len returns the number of entries.
func (t *PathTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table ordered by path.
func (t *PathTable) Entries() []PathEntry {
	if t == nil {
		return nil
	}
	out := make([]PathEntry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool { return lessPath(out[i].Path, out[j].Path) })
	return out
}

// Remove returns a new table without the node at p or any of its
// descendants, with later siblings renumbered. The receiver is not modified.
func (t *PathTable) Remove(p Path) *PathTable {
	out := NewPathTable()
	for _, e := range t.entries {
		np, ok := e.Path.renumberAfter(p)
		if !ok {
			continue
		}
		out.Set(np, e.Label)
	}
	return out
}

func (t *PathTable) clone() *PathTable {
	out := NewPathTable()
	if t == nil {
		return out
	}
	for _, e := range t.entries {
		out.Set(e.Path, e.Label)
	}
	return out
}

func lessPath(a, b Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
