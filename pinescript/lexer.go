package pinescript

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokColor
	tokOp
	tokEOF
)

type token struct {
	kind  tokenKind
	text  string
	quote byte // for tokString: the original quote character
	col   int  // 0-based column in the logical line
}

// multi-byte operators, longest first
var operators = []string{
	"=>", "==", "!=", "<=", ">=", ":=",
	"+=", "-=", "*=", "/=",
	"?", ":", ",", ".", "(", ")", "[", "]",
	"<", ">", "=", "+", "-", "*", "/", "%",
}

// lexLine tokenizes one logical line of Pine Script. Comments must already
// be stripped. line is the 1-based source line for error reporting.
func lexLine(text string, line int) ([]token, error) {
	var toks []token
	i := 0

	for i < len(text) {
		ch := text[i]

		if ch == ' ' || ch == '\t' {
			i++
			continue
		}

		// string literal
		if ch == '"' || ch == '\'' {
			quote := ch
			j := i + 1
			for j < len(text) {
				if text[j] == '\\' {
					j += 2
					continue
				}
				if text[j] == quote {
					break
				}
				j++
			}
			if j >= len(text) {
				return nil, errAt(line, "unterminated string literal")
			}
			toks = append(toks, token{kind: tokString, text: text[i+1 : j], quote: quote, col: i})
			i = j + 1
			continue
		}

		// color literal
		if ch == '#' {
			j := i + 1
			for j < len(text) && isHexDigit(text[j]) {
				j++
			}
			toks = append(toks, token{kind: tokColor, text: text[i:j], col: i})
			i = j
			continue
		}

		// number literal
		if isDigit(ch) || (ch == '.' && i+1 < len(text) && isDigit(text[i+1])) {
			j := i
			seenDot := false
			for j < len(text) {
				c := text[j]
				if isDigit(c) {
					j++
					continue
				}
				if c == '.' && !seenDot && j+1 < len(text) && isDigit(text[j+1]) {
					seenDot = true
					j++
					continue
				}
				if (c == 'e' || c == 'E') && j+1 < len(text) && (isDigit(text[j+1]) || text[j+1] == '-' || text[j+1] == '+') {
					j += 2
					continue
				}
				break
			}
			toks = append(toks, token{kind: tokNumber, text: text[i:j], col: i})
			i = j
			continue
		}

		// identifier or word keyword
		if isIdentStart(rune(ch)) {
			j := i
			for j < len(text) && isIdentPart(rune(text[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: text[i:j], col: i})
			i = j
			continue
		}

		// operator
		matched := false
		for _, op := range operators {
			if strings.HasPrefix(text[i:], op) {
				toks = append(toks, token{kind: tokOp, text: op, col: i})
				i += len(op)
				matched = true
				break
			}
		}
		if !matched {
			return nil, errAt(line, "unexpected character %q", ch)
		}
	}

	toks = append(toks, token{kind: tokEOF, col: len(text)})
	return toks, nil
}

func isDigit(ch byte) bool    { return ch >= '0' && ch <= '9' }
func isHexDigit(ch byte) bool { return isDigit(ch) || (ch|0x20 >= 'a' && ch|0x20 <= 'f') }

func isIdentStart(ch rune) bool { return ch == '_' || unicode.IsLetter(ch) }
func isIdentPart(ch rune) bool  { return isIdentStart(ch) || unicode.IsDigit(ch) }
