package token

import (
	"regexp"
	"strconv"
	"strings"

	"wrens.dev/schemevm/pkg/symbol"
)

var (
	integerRe = regexp.MustCompile(`^[+-]?\d+$`)
	floatRe   = regexp.MustCompile(`^[+-]?\d*\.?\d+(?:[eE][-+]?\d+)?$`)
)

// Tokenizer turns a source string into a flat slice of Token, recognizing
// parens, reader syntax, strings, comments, and ambiguous number/symbol
// starts by accumulate-then-classify.
type Tokenizer struct {
	input  []rune
	pos    int
	tokens []Token
}

// Tokenize lexes input in one pass. Comments are retained as tokens; the
// parser discards them.
func Tokenize(input string) ([]Token, error) {
	t := &Tokenizer{input: []rune(input)}
	if err := t.run(); err != nil {
		return nil, err
	}
	return t.tokens, nil
}

func (t *Tokenizer) next() (rune, bool) {
	if t.pos >= len(t.input) {
		return 0, false
	}
	c := t.input[t.pos]
	t.pos++
	return c, true
}

func (t *Tokenizer) peek() (rune, bool) {
	if t.pos >= len(t.input) {
		return 0, false
	}
	return t.input[t.pos], true
}

func (t *Tokenizer) run() error {
	for {
		c, ok := t.next()
		if !ok {
			return nil
		}
		switch {
		case isPairStart(c):
			t.tokens = append(t.tokens, tLeftParen())
		case isPairEnd(c):
			t.tokens = append(t.tokens, tRightParen())
		case c == '\'':
			t.tokens = append(t.tokens, tQuote())
		case c == '`':
			t.tokens = append(t.tokens, tQuasiquote())
		case c == ',':
			if n, ok := t.peek(); ok && n == '@' {
				t.next()
				t.tokens = append(t.tokens, tUnquoteSplice())
			} else {
				t.tokens = append(t.tokens, tUnquote())
			}
		case c == '"':
			if err := t.tokenizeString(); err != nil {
				return err
			}
		case c == '|':
			if err := t.tokenizeIdentifier("", true); err != nil {
				return err
			}
		case c == ';':
			t.tokenizeComment()
		case c == '#':
			if n, ok := t.peek(); ok && n == '|' {
				t.next()
				if err := t.tokenizeBlockComment(); err != nil {
					return err
				}
			} else {
				t.tokens = append(t.tokens, tPound())
			}
		case isSpace(c):
			// discard
		case c == '.':
			n, ok := t.peek()
			if !ok {
				t.tokens = append(t.tokens, tDot())
			} else if isDelimiter(n) {
				t.tokens = append(t.tokens, tDot())
			} else {
				if err := t.tokenizeAmbiguous('.'); err != nil {
					return err
				}
			}
		case (c >= '0' && c <= '9') || c == '+' || c == '-':
			if err := t.tokenizeAmbiguous(c); err != nil {
				return err
			}
		default:
			var buf strings.Builder
			if c == '\\' {
				n, ok := t.next()
				if !ok {
					return ErrEOF
				}
				buf.WriteRune(n)
			} else {
				buf.WriteRune(c)
			}
			if err := t.tokenizeIdentifier(buf.String(), false); err != nil {
				return err
			}
		}
	}
}

func (t *Tokenizer) tokenizeAmbiguous(first rune) error {
	var buf strings.Builder
	buf.WriteRune(first)

	for {
		c, ok := t.next()
		if !ok {
			t.distinguishAmbiguous(buf.String())
			return nil
		}
		switch {
		case (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '/' || c == '.' || c == 'e' || c == 'i':
			buf.WriteRune(c)
		case isPairStart(c):
			t.distinguishAmbiguous(buf.String())
			t.tokens = append(t.tokens, tLeftParen())
			return nil
		case isPairEnd(c):
			t.distinguishAmbiguous(buf.String())
			t.tokens = append(t.tokens, tRightParen())
			return nil
		case isSpace(c):
			t.distinguishAmbiguous(buf.String())
			return nil
		case c == '\\':
			n, ok := t.next()
			if !ok {
				return ErrEOF
			}
			buf.WriteRune(n)
			return t.tokenizeIdentifier(buf.String(), false)
		default:
			buf.WriteRune(c)
			return t.tokenizeIdentifier(buf.String(), c == '|')
		}
	}
}

func (t *Tokenizer) distinguishAmbiguous(buf string) {
	switch {
	case integerRe.MatchString(buf):
		n, _ := strconv.ParseInt(buf, 10, 32)
		t.tokens = append(t.tokens, tInteger(int32(n)))
	case floatRe.MatchString(buf):
		f, _ := strconv.ParseFloat(buf, 64)
		t.tokens = append(t.tokens, tFloat(f))
	default:
		t.tokens = append(t.tokens, tSymbol(symbol.Intern(buf)))
	}
}

func (t *Tokenizer) tokenizeIdentifier(prefix string, inBar bool) error {
	var buf strings.Builder
	buf.WriteString(prefix)

	for {
		c, ok := t.next()
		if !ok {
			t.tokens = append(t.tokens, tSymbol(symbol.Intern(buf.String())))
			return nil
		}
		switch {
		case c == '\\':
			n, ok := t.next()
			if !ok {
				return ErrEOF
			}
			buf.WriteRune(n)
		case c == '|':
			inBar = !inBar
		case isDelimiter(c):
			if inBar {
				buf.WriteRune(c)
				continue
			}
			t.tokens = append(t.tokens, tSymbol(symbol.Intern(buf.String())))
			switch {
			case isSpace(c):
				return nil
			case isPairStart(c):
				t.tokens = append(t.tokens, tLeftParen())
				return nil
			case isPairEnd(c):
				t.tokens = append(t.tokens, tRightParen())
				return nil
			case c == '"':
				return t.tokenizeString()
			case c == ';':
				t.tokenizeComment()
				return nil
			default:
				return ErrInput
			}
		default:
			buf.WriteRune(c)
		}
	}
}

func (t *Tokenizer) tokenizeString() error {
	var buf strings.Builder
	for {
		c, ok := t.next()
		if !ok {
			return ErrInString
		}
		switch c {
		case '\\':
			n, ok := t.next()
			if !ok {
				return ErrInString
			}
			switch n {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			default:
				buf.WriteRune(n)
			}
		case '"':
			t.tokens = append(t.tokens, tString(buf.String()))
			return nil
		default:
			buf.WriteRune(c)
		}
	}
}

func (t *Tokenizer) tokenizeBlockComment() error {
	var buf strings.Builder
	buf.WriteString("#|")
	nesting := 1
	for {
		c, ok := t.next()
		if !ok {
			return ErrEOF
		}
		switch c {
		case '|':
			n, ok := t.next()
			if !ok {
				return ErrEOF
			}
			if n == '#' {
				nesting--
				buf.WriteString("|#")
				if nesting == 0 {
					t.tokens = append(t.tokens, tBlockComment(buf.String()))
					return nil
				}
			} else {
				buf.WriteRune(n)
			}
		case '#':
			n, ok := t.next()
			if !ok {
				return ErrEOF
			}
			if n == '|' {
				nesting++
				buf.WriteString("#|")
			} else {
				buf.WriteRune(n)
			}
		default:
			buf.WriteRune(c)
		}
	}
}

func (t *Tokenizer) tokenizeComment() {
	var buf strings.Builder
	buf.WriteByte(';')
	for {
		c, ok := t.next()
		if !ok {
			break
		}
		if c == '\\' {
			n, ok := t.next()
			if !ok {
				break
			}
			buf.WriteByte('\\')
			buf.WriteRune(n)
			continue
		}
		if c == '\n' {
			break
		}
		buf.WriteRune(c)
	}
	t.tokens = append(t.tokens, tComment(buf.String()))
}

func isDelimiter(c rune) bool {
	return isPairStart(c) || isPairEnd(c) || isSpace(c) || c == '"' || c == ';'
}

func isPairStart(c rune) bool { return c == '(' || c == '[' || c == '{' }
func isPairEnd(c rune) bool   { return c == ')' || c == ']' || c == '}' }
func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
