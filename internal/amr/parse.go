package amr

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// constPrefix names the synthetic nodes created for constants in
// cross-lingual mode.
const constPrefix = "_CONST_"

// scanState is the position of the scanner relative to the last
// structural character.
type scanState int

const (
	seekOpen   scanState = iota // before the root '('
	inVariable                  // after '(' reading a node identifier
	inConcept                   // after '/' reading a concept label
	inRole                      // after ':' reading a role, possibly with a value
	afterClose                  // after ')'
)

// pendingAttr is a role/value pair whose kind (constant or re-entrant
// variable) is only known once every identifier has been declared.
type pendingAttr struct {
	role   string
	node   string
	value  string
	quoted bool
	path   Path
}

type parser struct {
	line  string
	lead  int // bytes trimmed before line
	g     *Graph
	state scanState
	stack []string
	buf   strings.Builder
	quote bool
	role  string // role waiting for the nested node that follows it
	path  Path
	done  bool // root closed

	pending []pendingAttr
}

// Parse reads one bracketed annotation such as
// "(w / want-01 :ARG0 (b / boy) :ARG1 (g / go-01 :ARG0 b))".
// With crossLingual set, every constant becomes a node of its own so that it
// can be aligned like a concept.
func Parse(line string, crossLingual bool) (*Graph, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil, &ParseError{Offset: 0, Msg: "empty annotation"}
	}

	p := &parser{
		line: text,
		lead: len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace)),
		g:    newGraph(),
		path: Path{0},
	}
	for i, c := range text {
		if err := p.step(i, c); err != nil {
			return nil, err
		}
	}
	if p.quote {
		return nil, p.errorf(len(text), "unterminated quote")
	}
	if len(p.stack) > 0 {
		return nil, p.errorf(len(text), "unmatched parenthesis")
	}
	if !p.done {
		return nil, p.errorf(len(text), "no node found")
	}

	p.resolvePending(crossLingual)
	return p.g, nil
}

func (p *parser) step(i int, c rune) error {
	if p.quote {
		switch c {
		case '"':
			p.quote = false
			p.buf.WriteRune(c)
		case ' ', '\t':
			p.buf.WriteByte('_')
		default:
			p.buf.WriteRune(c)
		}
		return nil
	}

	switch c {
	case ' ', '\t', '\n', '\r':
		if p.state == inRole {
			p.buf.WriteByte(' ')
		}
		return nil
	case '"':
		if err := p.inside(i, c); err != nil {
			return err
		}
		p.quote = true
		p.buf.WriteRune(c)
		return nil
	case '(':
		return p.open(i)
	case ':':
		return p.colon(i)
	case '/':
		return p.slash(i)
	case ')':
		return p.close(i)
	}

	if err := p.inside(i, c); err != nil {
		return err
	}
	p.buf.WriteRune(c)
	return nil
}

// inside rejects token text where no token may start.
func (p *parser) inside(i int, c rune) error {
	if p.state == seekOpen || p.state == afterClose && len(p.stack) == 0 {
		return p.errorf(i, "unexpected %q outside of a node", c)
	}
	if p.state == afterClose {
		return p.errorf(i, "unexpected %q after closing parenthesis", c)
	}
	return nil
}

func (p *parser) open(i int) error {
	switch p.state {
	case seekOpen:
	case inRole:
		if p.role != "" {
			return p.errorf(i, "role %q has two values", p.role)
		}
		role := strings.TrimSpace(p.token())
		if role == "" || strings.ContainsAny(role, " \t") {
			return p.errorf(i, "malformed role %q", role)
		}
		p.role = role
	default:
		if p.done {
			return p.errorf(i, "text after the root node")
		}
		return p.errorf(i, "unexpected '('")
	}
	p.state = inVariable
	return nil
}

func (p *parser) slash(i int) error {
	if p.state != inVariable {
		return p.errorf(i, "unexpected '/'")
	}
	name := strings.TrimSpace(p.token())
	if name == "" {
		return p.errorf(i, "missing node identifier")
	}
	if _, dup := p.g.index[name]; dup {
		return p.errorf(i, "duplicate node identifier %q", name)
	}
	p.g.addNode(name, "")
	p.stack = append(p.stack, name)

	if p.role != "" {
		parent := p.stack[len(p.stack)-2]
		p.addRelation(p.role, parent, name)
		p.role = ""
	}
	p.state = inConcept
	return nil
}

func (p *parser) colon(i int) error {
	if len(p.stack) == 0 {
		return p.errorf(i, "role outside of a node")
	}
	switch p.state {
	case inConcept:
		if err := p.finishConcept(i); err != nil {
			return err
		}
		p.path = append(p.path, 0)
	case inRole:
		if err := p.finishPair(i, false); err != nil {
			return err
		}
	case afterClose:
		p.path[len(p.path)-1]++
	default:
		return p.errorf(i, "unexpected ':'")
	}
	p.state = inRole
	return nil
}

func (p *parser) close(i int) error {
	if len(p.stack) == 0 {
		return p.errorf(i, "unmatched parenthesis")
	}
	switch p.state {
	case inRole:
		if err := p.finishPair(i, true); err != nil {
			return err
		}
		p.path = p.path[:len(p.path)-1]
	case inConcept:
		if err := p.finishConcept(i); err != nil {
			return err
		}
	case afterClose:
		p.path = p.path[:len(p.path)-1]
	default:
		return p.errorf(i, "node closed before its concept")
	}

	p.stack = p.stack[:len(p.stack)-1]
	p.role = ""
	p.state = afterClose
	if len(p.stack) == 0 {
		p.done = true
	}
	return nil
}

func (p *parser) finishConcept(i int) error {
	concept := strings.TrimSpace(p.token())
	if concept == "" {
		return p.errorf(i, "missing concept")
	}
	if strings.HasPrefix(concept, `"`) {
		concept = unquote(concept)
	}
	v := p.stack[len(p.stack)-1]
	p.g.Concepts[v] = concept
	p.g.Paths.Set(p.path, concept)
	return nil
}

// finishPair handles "role value" text terminated by ':' or ')'.
func (p *parser) finishPair(i int, closing bool) error {
	fields := strings.Fields(p.token())
	if len(fields) != 2 {
		return p.errorf(i, "malformed role/value pair %q", strings.Join(fields, " "))
	}
	role, value := fields[0], fields[1]
	node := p.stack[len(p.stack)-1]

	quoted := strings.HasPrefix(value, `"`)
	if quoted {
		value = unquote(value)
	}
	if _, isVar := p.g.index[value]; isVar && !quoted {
		p.addRelation(role, node, value)
		return nil
	}

	p.pending = append(p.pending, pendingAttr{
		role:   role,
		node:   node,
		value:  value,
		quoted: quoted,
		path:   p.path.clone(),
	})
	p.g.Paths.Set(p.path, value)
	if !closing {
		p.path[len(p.path)-1]++
	}
	return nil
}

// resolvePending classifies constants after the scan. A value naming a node
// declared later in the text is a re-entrant variable: it becomes a relation
// and its tree position is removed with its siblings renumbered.
func (p *parser) resolvePending(crossLingual bool) {
	var consts []pendingAttr
	for i := range p.pending {
		pa := p.pending[i]
		if _, isVar := p.g.index[pa.value]; isVar && !pa.quoted {
			p.addRelation(pa.role, pa.node, pa.value)
			if pa.path != nil {
				p.g.Paths = p.g.Paths.Remove(pa.path)
				for j := i + 1; j < len(p.pending); j++ {
					if p.pending[j].path == nil {
						continue
					}
					np, ok := p.pending[j].path.renumberAfter(pa.path)
					if !ok {
						np = nil
					}
					p.pending[j].path = np
				}
			}
			continue
		}

		if crossLingual {
			consts = append(consts, pa)
			continue
		}
		p.g.Attributes = append(p.g.Attributes, Attribute{Role: pa.role, Node: pa.node, Value: pa.value})
	}

	// constant nodes are numbered by owning node, then by text order
	sort.SliceStable(consts, func(a, b int) bool {
		return p.g.index[consts[a].node] < p.g.index[consts[b].node]
	})
	n := 0
	for _, pa := range consts {
		name := p.constName(&n)
		p.g.addNode(name, pa.value)
		p.g.Relations = append(p.g.Relations, Relation{Role: pa.role, From: pa.node, To: name})
	}
}

func (p *parser) constName(n *int) string {
	for {
		name := fmt.Sprintf("%s%d", constPrefix, *n)
		*n++
		if _, taken := p.g.index[name]; !taken {
			return name
		}
	}
}

// addRelation records role from -> to, inverting "-of" roles.
func (p *parser) addRelation(role, from, to string) {
	if base, ok := strings.CutSuffix(role, "-of"); ok && base != "" {
		p.g.Relations = append(p.g.Relations, Relation{Role: base, From: to, To: from})
		return
	}
	p.g.Relations = append(p.g.Relations, Relation{Role: role, From: from, To: to})
}

func (p *parser) token() string {
	s := p.buf.String()
	p.buf.Reset()
	return s
}

func (p *parser) errorf(i int, format string, args ...any) error {
	return &ParseError{Offset: p.lead + i, Msg: fmt.Sprintf(format, args...)}
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, `"`)
}
