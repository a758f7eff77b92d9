package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"sl/internal/token"
)

// Error is a lexical error: an unexpected character or an unterminated
// string or block comment.
type Error struct {
	Pos token.Position
	Msg string

	// AtEnd is set when the input ran out inside a string or comment.
	AtEnd bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

type Lexer struct {
	input []rune

	pos int

	ch   rune
	eof  bool
	line int
	col  int

	errors []error
}

func New(input string) *Lexer {
	l := &Lexer{
		input: []rune(input),
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Scan lexes the whole source. The returned slice always ends with an EOF
// token, even when errors were recorded.
func Scan(source string) ([]token.Token, []error) {
	l := New(source)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, l.Errors()
}

// NextToken returns the next token. Characters that start no token are
// recorded as errors and skipped.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespaceAndComments()

		pos := token.Position{
			Line:   l.line,
			Column: l.col,
		}

		ch := l.ch

		if l.eof {
			return token.Token{
				Kind:   token.EOF,
				Lexeme: "",
				Pos:    pos,
			}
		}

		// Numbers
		if isDigit(ch) {
			lit := l.readNumber()
			val, err := strconv.ParseFloat(lit, 64)
			// out of range literals become +Inf
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				l.errorf(pos, "invalid number literal %q", lit)
				continue
			}
			return token.Token{
				Kind:    token.Number,
				Lexeme:  lit,
				Literal: val,
				Pos:     pos,
			}
		}

		// Identifiers / keywords
		if isLetter(ch) {
			lit := l.readIdentifier()
			return token.Token{
				Kind:   token.LookupIdent(lit),
				Lexeme: lit,
				Pos:    pos,
			}
		}

		// Strings
		if ch == '"' {
			lit, ok := l.readString()
			if !ok {
				l.errorAtEnd(pos, "unterminated string literal")
				continue
			}
			return token.Token{
				Kind:    token.String,
				Lexeme:  `"` + lit + `"`,
				Literal: lit,
				Pos:     pos,
			}
		}

		// Single- and two-character tokens
		var kind token.Kind
		var lexeme string

		switch ch {
		case ';':
			kind = token.Semicolon
			lexeme = ";"
		case ',':
			kind = token.Comma
			lexeme = ","
		case '.':
			kind = token.Dot
			lexeme = "."
		case '(':
			kind = token.LParen
			lexeme = "("
		case ')':
			kind = token.RParen
			lexeme = ")"
		case '{':
			kind = token.LBrace
			lexeme = "{"
		case '}':
			kind = token.RBrace
			lexeme = "}"
		case '+':
			kind = token.Plus
			lexeme = "+"
		case '-':
			kind = token.Minus
			lexeme = "-"
		case '*':
			kind = token.Star
			lexeme = "*"
		case '/':
			kind = token.Slash
			lexeme = "/"
		case '!':
			if l.peekChar() == '=' {
				l.readChar()
				kind = token.NotEq
				lexeme = "!="
			} else {
				kind = token.Bang
				lexeme = "!"
			}
		case '=':
			if l.peekChar() == '=' {
				l.readChar()
				kind = token.Eq
				lexeme = "=="
			} else {
				kind = token.Assign
				lexeme = "="
			}
		case '<':
			if l.peekChar() == '=' {
				l.readChar()
				kind = token.LtEq
				lexeme = "<="
			} else {
				kind = token.Lt
				lexeme = "<"
			}
		case '>':
			if l.peekChar() == '=' {
				l.readChar()
				kind = token.GtEq
				lexeme = ">="
			} else {
				kind = token.Gt
				lexeme = ">"
			}
		default:
			l.errorf(pos, "unexpected character %q", ch)
			l.readChar()
			continue
		}

		l.readChar()

		return token.Token{
			Kind:   kind,
			Lexeme: lexeme,
			Pos:    pos,
		}
	}
}

// Helpers

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.eof = true
		return
	}

	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for !l.eof && unicode.IsSpace(l.ch) {
			l.readChar()
		}

		if l.ch == '/' {
			switch l.peekChar() {
			case '/':
				l.readChar() // '/'
				l.readChar() // second '/'
				for l.ch != '\n' && !l.eof {
					l.readChar()
				}
				continue
			case '*':
				start := token.Position{Line: l.line, Column: l.col}
				l.readChar() // '/'
				l.readChar() // '*'
				for {
					if l.eof {
						l.errorAtEnd(start, "unterminated block comment")
						return
					}
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // '*'
						l.readChar() // '/'
						break
					}
					l.readChar()
				}
				continue
			}
		}

		break
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos - 1 // current rune is already in l.ch
	for !l.eof && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return string(l.input[start:l.end()])
}

func (l *Lexer) readNumber() string {
	start := l.pos - 1
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return string(l.input[start:l.end()])
}

// readString consumes a string body after the opening quote. Strings may
// span lines and have no escape sequences.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // opening quote
	start := l.pos - 1
	for !l.eof && l.ch != '"' {
		l.readChar()
	}
	if l.eof {
		return "", false
	}
	lit := string(l.input[start : l.pos-1])
	l.readChar() // closing quote
	return lit, true
}

// end is the index one past the last consumed rune.
func (l *Lexer) end() int {
	if l.eof {
		return len(l.input)
	}
	return l.pos - 1
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) {
	l.errors = append(l.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (l *Lexer) errorAtEnd(pos token.Position, msg string) {
	l.errors = append(l.errors, &Error{Pos: pos, Msg: msg, AtEnd: true})
}

func (l *Lexer) Errors() []error {
	return l.errors
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	if ch >= utf8.RuneSelf {
		return false
	}
	return ch >= '0' && ch <= '9'
}
