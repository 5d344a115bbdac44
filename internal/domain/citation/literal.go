package citation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrNotLiteral is returned by ParseLiteral for any input that is not pure
// literal data. Names, calls, operators and attribute access are all rejected.
var ErrNotLiteral = errors.New("not a literal")

const maxLiteralDepth = 64

// ParseLiteral evaluates a loose object-literal expression of the kind found in
// tool output, such as {'source': 'doc1.pdf', 'page': 3}. It accepts strings in
// single, double or triple quotes, integers, floats, True/False/None (and their
// JSON spellings), dicts, lists, tuples and sets. Nothing is ever executed.
//
// Dicts become map[string]any (non-string keys are formatted with fmt.Sprint),
// lists, tuples and sets become []any, integers int64 and floats float64.
func ParseLiteral(src string) (any, error) {
	p := &literalParser{src: src}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.rest(12))
	}
	return v, nil
}

type literalParser struct {
	src   string
	pos   int
	depth int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrNotLiteral, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) rest(n int) string {
	if p.pos+n > len(p.src) {
		return p.src[p.pos:]
	}
	return p.src[p.pos:p.pos+n] + "..."
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.src[p.pos]
	switch {
	case c == '{':
		return p.nested(p.dictOrSet)
	case c == '[':
		return p.nested(func() (any, error) { return p.sequence(']') })
	case c == '(':
		return p.nested(p.tuple)
	case c == '\'' || c == '"':
		return p.strings()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		return p.keyword()
	}
	return nil, p.errorf("unexpected character %q", c)
}

func (p *literalParser) nested(parse func() (any, error)) (any, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxLiteralDepth {
		return nil, p.errorf("nesting deeper than %d", maxLiteralDepth)
	}
	return parse()
}

func (p *literalParser) keyword() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	switch word := p.src[start:p.pos]; word {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	default:
		p.pos = start
		return nil, p.errorf("name %q is not a literal", word)
	}
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
		p.skipSpace()
	}
	sign := strings.TrimSpace(p.src[start:p.pos])

	digitsStart := p.pos
	if c := p.peek(); !isDigit(c) && c != '.' {
		return nil, p.errorf("expected a number")
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentPart(c) || c == '.' {
			p.pos++
			continue
		}
		if (c == '+' || c == '-') && p.pos > digitsStart && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') && !isPrefixed(p.src[digitsStart:p.pos]) {
			p.pos++
			continue
		}
		break
	}

	token := sign + p.src[digitsStart:p.pos]
	if n, err := strconv.ParseInt(token, 0, 64); err == nil {
		return n, nil
	} else if errors.Is(err, strconv.ErrRange) {
		if f, ferr := strconv.ParseFloat(token, 64); ferr == nil {
			return f, nil
		}
	}
	if !isPrefixed(p.src[digitsStart:p.pos]) {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return f, nil
		}
	}
	p.pos = start
	return nil, p.errorf("invalid number %q", token)
}

func (p *literalParser) strings() (any, error) {
	var b strings.Builder
	for {
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		b.WriteString(s)

		// Adjacent string literals concatenate.
		save := p.pos
		p.skipSpace()
		if c := p.peek(); c != '\'' && c != '"' {
			p.pos = save
			return b.String(), nil
		}
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	delim := string(quote)
	if strings.HasPrefix(p.src[p.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	p.pos += len(delim)

	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		if strings.HasPrefix(p.src[p.pos:], delim) {
			p.pos += len(delim)
			return b.String(), nil
		}

		c := p.src[p.pos]
		switch {
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case (c == '\n' || c == '\r') && len(delim) == 1:
			return "", p.errorf("newline in single-quoted string")
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *literalParser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++

	switch c {
	case '\n':
		// line continuation
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		start := p.pos - 1
		for p.pos < len(p.src) && p.pos-start < 3 && p.src[p.pos] >= '0' && p.src[p.pos] <= '7' {
			p.pos++
		}
		n, _ := strconv.ParseUint(p.src[start:p.pos], 8, 32)
		b.WriteRune(rune(n))
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) hexEscape(b *strings.Builder, width int) error {
	if p.pos+width > len(p.src) {
		return p.errorf("truncated \\x, \\u or \\U escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
	if err != nil || n > utf8.MaxRune {
		return p.errorf("invalid hex escape %q", p.src[p.pos:p.pos+width])
	}
	p.pos += width
	b.WriteRune(rune(n))
	return nil
}

func (p *literalParser) sequence(closer byte) ([]any, error) {
	p.pos++ // opener
	return p.items(closer, []any{})
}

// items parses the remainder of a comma separated sequence up to closer. A
// non-empty items means the parser sits just after its last element.
func (p *literalParser) items(closer byte, items []any) ([]any, error) {
	needItem := len(items) == 0
	for {
		p.skipSpace()
		if needItem {
			if p.peek() == closer {
				p.pos++
				return items, nil
			}
			item, err := p.value()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			p.skipSpace()
		}
		needItem = true

		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return items, nil
		default:
			return nil, p.errorf("expected ',' or %q", closer)
		}
	}
}

// tuple handles parentheses, which only build a tuple when a comma is present.
func (p *literalParser) tuple() (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return []any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return first, nil
	}
	return p.items(')', []any{first})
}

func (p *literalParser) dictOrSet() (any, error) {
	p.pos++
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return map[string]any{}, nil
	}

	result := map[string]any{}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return result, nil
		}

		key, err := p.value()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			if len(result) == 0 {
				return p.items('}', []any{key})
			}
			return nil, p.errorf("expected ':' after dict key")
		}
		p.pos++
		p.skipSpace()

		val, err := p.value()
		if err != nil {
			return nil, err
		}
		mapKey, err := p.dictKey(key)
		if err != nil {
			return nil, err
		}
		result[mapKey] = val

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return result, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *literalParser) dictKey(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case map[string]any:
		return "", p.errorf("unhashable dict key")
	case nil:
		return "None", nil
	case bool:
		if k {
			return "True", nil
		}
		return "False", nil
	default:
		return fmt.Sprint(k), nil
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isPrefixed(token string) bool {
	if len(token) < 2 || token[0] != '0' {
		return false
	}
	switch token[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}
