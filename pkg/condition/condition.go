// Package condition compiles the small boolean rules used by layouts to
// switch fields on and off, e.g. `channel == ""` or `age != 0 && !agree`.
//
// Supported syntax:
//   - truthiness: `channel`, `!channel`
//   - comparisons against string, number, bool and null literals: `==`, `!=`
//   - composition with `&&`, `||` and parentheses
//
// Identifiers are dotted paths resolved through Values.
package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Values resolves dotted paths. form.ValueTree satisfies it.
type Values interface {
	Get(path string) any
}

// Expr is a compiled rule. The zero value is not usable; use Compile.
type Expr struct {
	source string
	root   node
}

// Compile parses rule. An empty rule compiles to an expression that is
// always false.
func Compile(rule string) (*Expr, error) {
	source := strings.TrimSpace(rule)
	if source == "" {
		return &Expr{root: constant(false)}, nil
	}
	tokens, err := scan(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("condition: unexpected token %q in %q", p.peek().raw, source)
	}
	return &Expr{source: source, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(rule string) *Expr {
	expr, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return expr
}

// Eval reports whether the rule holds for values. A nil Values behaves
// like an empty tree.
func (e *Expr) Eval(values Values) bool {
	if e == nil || e.root == nil {
		return false
	}
	return e.root.eval(values)
}

// String returns the trimmed source rule.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

type node interface {
	eval(values Values) bool
}

type constant bool

func (c constant) eval(Values) bool { return bool(c) }

type orNode struct{ left, right node }

func (n orNode) eval(values Values) bool { return n.left.eval(values) || n.right.eval(values) }

type andNode struct{ left, right node }

func (n andNode) eval(values Values) bool { return n.left.eval(values) && n.right.eval(values) }

type notNode struct{ inner node }

func (n notNode) eval(values Values) bool { return !n.inner.eval(values) }

type truthyNode struct{ path string }

func (n truthyNode) eval(values Values) bool { return truthy(resolve(values, n.path)) }

type compareNode struct {
	path   string
	negate bool
	want   literal
}

func (n compareNode) eval(values Values) bool {
	return n.want.matches(resolve(values, n.path)) != n.negate
}

type literalKind int

const (
	literalString literalKind = iota
	literalNumber
	literalBool
	literalNull
)

type literal struct {
	kind   literalKind
	text   string
	number float64
	flag   bool
}

func (l literal) matches(value any) bool {
	switch l.kind {
	case literalNull:
		return value == nil
	case literalBool:
		return asBool(value) == l.flag
	case literalNumber:
		got, _ := asNumber(value)
		return got == l.number
	default:
		return asString(value) == l.text
	}
}

func resolve(values Values, path string) any {
	if values == nil {
		return nil
	}
	return values.Get(path)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func scan(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case isSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case ch == '!':
			if strings.HasPrefix(input[i:], "!=") {
				tokens = append(tokens, token{tokNeq, "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{tokNot, "!"})
			i++
		case ch == '=' || ch == '&' || ch == '|':
			pair := string([]byte{ch, ch})
			if !strings.HasPrefix(input[i:], pair) {
				return nil, fmt.Errorf("condition: unexpected %q at offset %d; use %q", ch, i, pair)
			}
			kind := map[byte]tokenKind{'=': tokEq, '&': tokAnd, '|': tokOr}[ch]
			tokens = append(tokens, token{kind, pair})
			i += 2
		case ch == '"' || ch == '\'':
			text, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokString, text})
			i += width
		default:
			start := i
			for i < len(input) && !isSpace(input[i]) && !strings.ContainsRune("()!=&|\"'", rune(input[i])) {
				i++
			}
			tokens = append(tokens, word(input[start:i]))
		}
	}
	return tokens, nil
}

func scanString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for i := 1; i < len(input); i++ {
		switch c := input[i]; {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == quote:
			body := input[1:i]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `\'`, `'`)
				body = strings.ReplaceAll(body, `"`, `\"`)
			}
			text, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", 0, fmt.Errorf("condition: invalid string literal %s: %w", input[:i+1], err)
			}
			return text, i + 1, nil
		}
	}
	return "", 0, errors.New("condition: unterminated string literal")
}

func word(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{tokBool, strings.ToLower(raw)}
	case "null", "nil":
		return token{tokNull, "null"}
	}
	if c := raw[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return token{tokNumber, raw}
	}
	return token{tokIdent, raw}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) accept(kind tokenKind) bool {
	if p.done() || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, errors.New("condition: missing closing ')'")
		}
		return inner, nil
	}
	if p.done() {
		return nil, errors.New("condition: unexpected end of rule")
	}
	ident := p.peek()
	if ident.kind != tokIdent {
		return nil, fmt.Errorf("condition: expected a field path, got %q", ident.raw)
	}
	p.pos++

	negate := false
	switch {
	case p.accept(tokEq):
	case p.accept(tokNeq):
		negate = true
	default:
		return truthyNode{ident.raw}, nil
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return compareNode{path: ident.raw, negate: negate, want: lit}, nil
}

func (p *parser) parseLiteral() (literal, error) {
	if p.done() {
		return literal{}, errors.New("condition: missing literal after comparison")
	}
	tok := p.peek()
	p.pos++
	switch tok.kind {
	case tokString, tokIdent:
		// Bare words compare as strings.
		return literal{kind: literalString, text: tok.raw}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return literal{}, fmt.Errorf("condition: invalid number %q", tok.raw)
		}
		return literal{kind: literalNumber, number: n}, nil
	case tokBool:
		return literal{kind: literalBool, flag: tok.raw == "true"}, nil
	case tokNull:
		return literal{kind: literalNull}, nil
	default:
		return literal{}, fmt.Errorf("condition: expected a literal, got %q", tok.raw)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := asNumber(value); ok {
		return n != 0
	}
	return true
}

func asBool(value any) bool {
	if s, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed
		}
	}
	return truthy(value)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
