package amr

import "strings"

// Format writes g back to single-line bracketed notation. Nodes reachable
// from the root through outgoing relations are nested under their source;
// the rest hang off their target with an "-of" role. Every triple is written
// exactly once.
func Format(g *Graph) string {
	if g == nil || len(g.Nodes) == 0 {
		return ""
	}
	w := &writer{
		g:         g,
		visited:   make(map[string]bool, len(g.Nodes)),
		emitted:   make([]bool, len(g.Relations)),
		reachable: reachableFrom(g, g.Root()),
	}
	w.expand(g.Root())
	return w.sb.String()
}

type writer struct {
	g         *Graph
	sb        strings.Builder
	visited   map[string]bool
	emitted   []bool
	reachable map[string]bool
}

func reachableFrom(g *Graph, root string) map[string]bool {
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, r := range g.Relations {
			if r.From == v && !seen[r.To] {
				seen[r.To] = true
				queue = append(queue, r.To)
			}
		}
	}
	return seen
}

func (w *writer) expand(v string) {
	w.visited[v] = true
	w.sb.WriteString("(")
	w.sb.WriteString(v)
	w.sb.WriteString(" / ")
	w.sb.WriteString(w.g.Concepts[v])

	for i, r := range w.g.Relations {
		if w.emitted[i] || r.From != v {
			continue
		}
		w.emitted[i] = true
		w.child(r.Role, r.To)
	}
	for i, r := range w.g.Relations {
		if w.emitted[i] || r.To != v || w.reachable[r.From] || w.visited[r.From] {
			continue
		}
		w.emitted[i] = true
		w.child(r.Role+"-of", r.From)
	}

	for _, a := range w.g.Attributes {
		if a.Node != v {
			continue
		}
		w.sb.WriteString(" :")
		w.sb.WriteString(a.Role)
		w.sb.WriteString(" ")
		w.sb.WriteString(w.formatValue(a.Value))
	}
	w.sb.WriteString(")")
}

func (w *writer) child(role, v string) {
	w.sb.WriteString(" :")
	w.sb.WriteString(role)
	w.sb.WriteString(" ")
	if w.visited[v] {
		w.sb.WriteString(v)
		return
	}
	w.expand(v)
}

func (w *writer) formatValue(value string) string {
	if _, isVar := w.g.index[value]; !isVar && isBareValue(value) {
		return value
	}
	return `"` + value + `"`
}

func isBareValue(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c == '-', c == '+', c == '.':
		default:
			return false
		}
	}
	return true
}
