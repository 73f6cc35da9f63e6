package diff

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// Color classifies a node or edge of the merged graph.
type Color int

const (
	Agree Color = iota
	Disagree
	TestOnly
	GoldOnly
)

var colorNames = [...]string{"agree", "disagree", "test_only", "gold_only"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return "Color(" + strconv.Itoa(int(c)) + ")"
	}
	return colorNames[c]
}

func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colorNames) {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	for i, name := range colorNames {
		if name == string(b) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", b)
}

// classify derives the color and display label of a test/gold label pair.
func classify(test, gold string) (Color, string) {
	switch {
	case gold == "":
		return TestOnly, test + " / *"
	case test == "":
		return GoldOnly, "* / " + gold
	case test == gold:
		return Agree, test
	default:
		return Disagree, test + " (" + gold + ")"
	}
}

// Node is a vertex of the merged graph. Name is the test variable, a
// "GOLD <n>" placeholder, or "<var> <value>" for constants.
type Node struct {
	id        int64
	Name      string
	Label     string
	TestLabel string
	GoldLabel string
	TestIndex int
	GoldIndex int
	Color     Color
}

func (n *Node) ID() int64      { return n.id }
func (n *Node) DOTID() string  { return n.Name }
func (n *Node) IsConst() bool  { return n.TestIndex < 0 && n.GoldIndex < 0 }
func (n *Node) String() string { return n.Name }

func (n *Node) setLabels(test, gold string) {
	n.TestLabel, n.GoldLabel = test, gold
	n.Color, n.Label = classify(test, gold)
}

// Attributes implements encoding.Attributer for DOT export.
func (n *Node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: n.Label},
		{Key: "color", Value: dotColor(n.Color)},
	}
}

// Edge is one labeled line of the merged multigraph.
type Edge struct {
	id        int64
	F, T      *Node
	Label     string
	TestLabel string
	GoldLabel string
	Color     Color
}

func (e *Edge) From() graph.Node { return e.F }
func (e *Edge) To() graph.Node   { return e.T }
func (e *Edge) ID() int64        { return e.id }

func (e *Edge) ReversedLine() graph.Line {
	r := *e
	r.F, r.T = e.T, e.F
	return &r
}

// Attributes implements encoding.Attributer for DOT export.
func (e *Edge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: e.Label},
		{Key: "color", Value: dotColor(e.Color)},
	}
}

func dotColor(c Color) string {
	switch c {
	case TestOnly:
		return "red"
	case GoldOnly:
		return "blue"
	case Disagree:
		return "purple"
	default:
		return "black"
	}
}
