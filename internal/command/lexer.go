package command

import (
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenWord
	TokenString
	TokenField
)

type Token struct {
	Type  TokenType
	Value string
}

type Lexer struct {
	input []rune
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF}
	}

	// Строка в кавычках целиком
	if q := l.input[l.pos]; q == '"' || q == '\'' {
		return l.readQuoted(q)
	}

	// Читаем токен до пробела ИЛИ до двоеточия (если это поле)
	start := l.pos
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		if l.input[l.pos] == ':' {
			name := strings.ToLower(string(l.input[start:l.pos]))
			if isOption(name) {
				l.pos++ // двоеточие съедаем вместе с именем
				return Token{Type: TokenField, Value: name}
			}
		}
		l.pos++
	}

	return Token{Type: TokenWord, Value: string(l.input[start:l.pos])}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) readQuoted(q rune) Token {
	l.pos++ // открывающая кавычка
	var b strings.Builder
	for l.pos < len(l.input) {
		r := l.input[l.pos]
		switch {
		case r == '\\' && l.pos+1 < len(l.input):
			b.WriteRune(l.input[l.pos+1])
			l.pos += 2
		case r == q:
			l.pos++
			return Token{Type: TokenString, Value: b.String()}
		default:
			b.WriteRune(r)
			l.pos++
		}
	}
	return Token{Type: TokenError, Value: "unterminated quote"}
}
