package match

import (
	"fmt"

	"amrdiff/internal/align"
	"amrdiff/internal/amr"
)

// Unmatched marks a test node with no gold counterpart.
const Unmatched = -1

// Correspondence maps test node positions to gold node positions.
type Correspondence []int

// Identity returns the correspondence pairing position i with position i.
func Identity(n int) Correspondence {
	c := make(Correspondence, n)
	for i := range c {
		c[i] = i
	}
	return c
}

// Validate checks c against the node counts of the graphs it pairs.
func (c Correspondence) Validate(testNodes, goldNodes int) error {
	if len(c) < testNodes {
		return &ContractViolation{Msg: fmt.Sprintf("correspondence covers %d of %d test nodes", len(c), testNodes)}
	}
	seen := make(map[int]int, len(c))
	for i, g := range c[:testNodes] {
		if g < 0 {
			continue
		}
		if g >= goldNodes {
			return &ContractViolation{Msg: fmt.Sprintf("test node %d maps to gold node %d of %d", i, g, goldNodes)}
		}
		if prev, dup := seen[g]; dup {
			return &ContractViolation{Msg: fmt.Sprintf("test nodes %d and %d both map to gold node %d", prev, i, g)}
		}
		seen[g] = i
	}
	return nil
}

// Gold returns the gold position for test position i, or Unmatched.
func (c Correspondence) Gold(i int) int {
	if i < 0 || i >= len(c) || c[i] < 0 {
		return Unmatched
	}
	return c[i]
}

// Oracle finds a node correspondence between a test and a gold graph.
type Oracle interface {
	Match(test, gold *amr.Graph, model align.LabelWeightModel) (Correspondence, float64, error)
}

// MustValidate panics with a *ContractViolation when c is invalid.
func MustValidate(c Correspondence, testNodes, goldNodes int) {
	if err := c.Validate(testNodes, goldNodes); err != nil {
		panic(err)
	}
}
