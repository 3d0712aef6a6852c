package dice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultFormula is rolled when no formula is given.
const DefaultFormula = "1d20"

// FormulaError reports a formula that cannot be evaluated. It is a normal
// user mistake, not a system failure.
type FormulaError struct {
	Formula string
	Reason  string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q: %s", e.Formula, e.Reason)
}

func (e *FormulaError) UserFacing() bool {
	return true
}

// Evaluator evaluates roll formulas.
//
// Supported syntax: integers, NdS and dS (the Cyrillic "д" is accepted for
// "d"), + - * / with the usual precedence, unary minus, parentheses and
// {name} placeholders filled from the variables passed to Evaluate. Count
// and sides may be parenthesized expressions, e.g. "({str}+1)d20".
type Evaluator struct {
	src Source
}

func NewEvaluator(src Source) *Evaluator {
	if src == nil {
		src = DefaultSource
	}
	return &Evaluator{src: src}
}

// Evaluate rolls formula. An empty formula rolls DefaultFormula. Variable
// values may be ints or strings; strings are spliced in as sub-formulas.
func (e *Evaluator) Evaluate(formula string, vars map[string]any) (int, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		formula = DefaultFormula
	}

	expanded, err := expandVars(formula, vars)
	if err != nil {
		return 0, &FormulaError{Formula: formula, Reason: err.Error()}
	}

	p := &parser{src: e.src, input: []rune(expanded)}
	total, err := p.parseExpr()
	if err == nil && !p.eof() {
		err = fmt.Errorf("unexpected %q at position %d", string(p.peek()), p.pos+1)
	}
	if err != nil {
		return 0, &FormulaError{Formula: formula, Reason: err.Error()}
	}
	return total, nil
}

func expandVars(formula string, vars map[string]any) (string, error) {
	var sb strings.Builder
	rest := formula
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unclosed variable placeholder")
		}

		name := strings.TrimSpace(rest[open+1 : open+end])
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("unknown variable %q", name)
		}

		var text string
		switch v := val.(type) {
		case int:
			text = strconv.Itoa(v)
		case string:
			text = v
		default:
			return "", fmt.Errorf("variable %q has unsupported type %T", name, val)
		}
		if strings.ContainsAny(text, "{}") {
			return "", fmt.Errorf("variable %q may not contain placeholders", name)
		}

		sb.WriteString(rest[:open])
		sb.WriteString("(" + text + ")")
		rest = rest[open+end+1:]
	}
}

type parser struct {
	src   Source
	input []rune
	pos   int
}

func (p *parser) eof() bool {
	p.skipSpace()
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func isDie(r rune) bool {
	return r == 'd' || r == 'D' || r == 'д' || r == 'Д'
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (int, error) {
	total, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return total, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '-' {
			if rhs == math.MinInt {
				return 0, errOverflow
			}
			rhs = -rhs
		}
		if total, err = addChecked(total, rhs); err != nil {
			return 0, err
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) parseTerm() (int, error) {
	total, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return total, nil
		}
		p.pos++
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			if total, err = mulChecked(total, rhs); err != nil {
				return 0, err
			}
			continue
		}
		if rhs == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		if total == math.MinInt && rhs == -1 {
			return 0, errOverflow
		}
		total /= rhs
	}
}

// unary := '-' unary | roll
func (p *parser) parseUnary() (int, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if v == math.MinInt {
			return 0, errOverflow
		}
		return -v, nil
	}
	return p.parseRoll()
}

// roll := primary | primary? die primary
func (p *parser) parseRoll() (int, error) {
	count := 1
	if !isDie(p.peek()) {
		v, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		if !isDie(p.peek()) {
			return v, nil
		}
		count = v
	}
	p.pos++

	sides, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	_, total, err := Roll(p.src, Spec{Count: count, Sides: sides})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// primary := number | '(' expr ')'
func (p *parser) parsePrimary() (int, error) {
	r := p.peek()
	switch {
	case r == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil

	case r >= '0' && r <= '9':
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		v, err := strconv.Atoi(string(p.input[start:p.pos]))
		if err != nil {
			return 0, fmt.Errorf("number %q out of range", string(p.input[start:p.pos]))
		}
		return v, nil

	case r == 0:
		return 0, fmt.Errorf("unexpected end of formula")

	default:
		return 0, fmt.Errorf("unexpected %q at position %d", string(r), p.pos+1)
	}
}

var errOverflow = errors.New("result out of range")

func addChecked(a, b int) (int, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, errOverflow
	}
	return sum, nil
}

func mulChecked(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, errOverflow
	}
	product := a * b
	if product/b != a {
		return 0, errOverflow
	}
	return product, nil
}
