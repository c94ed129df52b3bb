package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokNot
	tokAnd
	tokOr
	tokOp
	tokMarker // $:name, text holds the name
	tokWord   // name, number, boolean or bare string
	tokString // double-quoted string, text holds the unquoted value
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokNot:
		return `"!"`
	case tokAnd:
		return `"&&"`
	case tokOr:
		return `"||"`
	case tokOp:
		return "comparison operator"
	case tokMarker:
		return "change marker"
	case tokWord:
		return "word"
	case tokString:
		return "string"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset into the source
}

const markerPrefix = "$:"

// lex splits condition text into tokens. The returned slice always ends with
// a tokEOF token.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case strings.HasPrefix(src[i:], "&&"):
			toks = append(toks, token{kind: tokAnd, text: "&&", pos: i})
			i += 2
		case strings.HasPrefix(src[i:], "||"):
			toks = append(toks, token{kind: tokOr, text: "||", pos: i})
			i += 2
		case strings.HasPrefix(src[i:], "=="), strings.HasPrefix(src[i:], "!="),
			strings.HasPrefix(src[i:], "<="), strings.HasPrefix(src[i:], ">="):
			toks = append(toks, token{kind: tokOp, text: src[i : i+2], pos: i})
			i += 2
		case c == '<' || c == '>':
			toks = append(toks, token{kind: tokOp, text: src[i : i+1], pos: i})
			i++
		case c == '!':
			toks = append(toks, token{kind: tokNot, text: "!", pos: i})
			i++
		case strings.HasPrefix(src[i:], markerPrefix):
			start := i
			i += len(markerPrefix)
			j := i
			for j < len(src) && isNameChar(src[j]) {
				j++
			}
			name := src[i:j]
			if !isName(name) {
				return nil, &ParseError{Column: start + 1, Message: fmt.Sprintf("change marker needs a variable name, got %q", name), Source: src}
			}
			toks = append(toks, token{kind: tokMarker, text: name, pos: start})
			i = j
		case c == '"':
			end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			val, uerr := strconv.Unquote(src[i:end])
			if uerr != nil {
				return nil, &ParseError{Column: i + 1, Message: fmt.Sprintf("invalid string literal %s", src[i:end]), Source: src}
			}
			toks = append(toks, token{kind: tokString, text: val, pos: i})
			i = end
		case isWordChar(c):
			start := i
			for i < len(src) && isWordChar(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: src[start:i], pos: start})
		case c == '=':
			return nil, &ParseError{Column: i + 1, Message: `unexpected "=", use "==" for equality`, Source: src}
		case c == '&' || c == '|':
			return nil, &ParseError{Column: i + 1, Message: fmt.Sprintf("unexpected %q, use %q", string(c), string(c)+string(c)), Source: src}
		default:
			return nil, &ParseError{Column: i + 1, Message: fmt.Sprintf("unexpected character %q", string(c)), Source: src}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// isWordChar covers names, numbers (including sign, fraction and exponent)
// and bare string literals such as HDMI-1 or café.
func isWordChar(c byte) bool {
	return isNameChar(c) || c == '+' || c >= utf8.RuneSelf
}

// scanString returns the offset just past the closing quote of the string
// literal starting at src[start].
func scanString(src string, start int) (int, error) {
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, nil
		default:
			i++
		}
	}
	return 0, &ParseError{Column: start + 1, Message: "unterminated string literal", Source: src}
}
