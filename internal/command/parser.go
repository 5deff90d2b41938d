package command

import (
	"errors"
	"fmt"
	"strings"
)

// опции, которые понимает get; остальное с двоеточием - обычные слова (например "Война:мир")
var options = map[string]bool{
	"format": true,
	"out":    true,
	"limit":  true,
	"name":   true,
}

func isOption(name string) bool { return options[name] }

var ErrEmpty = errors.New("empty command")

// Command разобранная строка шелла: имя, позиционные аргументы, опции вида key:value
type Command struct {
	Name    string
	Args    []string
	Options map[string]string
}

// Arg склеивает позиционные аргументы в одну строку, для запроса поиска
func (c Command) Arg() string {
	return strings.Join(c.Args, " ")
}

// Parse - точка входа. Создает лексер и разбирает строку.
func Parse(input string) (Command, error) {
	p := newParser(NewLexer(input))
	return p.parse()
}

type Parser struct {
	l      *Lexer
	curTok Token
}

func newParser(l *Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.l.NextToken()
}

func (p *Parser) parse() (Command, error) {
	cmd := Command{Options: map[string]string{}}

	switch p.curTok.Type {
	case TokenEOF:
		return cmd, ErrEmpty
	case TokenError:
		return cmd, errors.New(p.curTok.Value)
	case TokenField:
		return cmd, fmt.Errorf("expected command, got option %q", p.curTok.Value)
	}
	cmd.Name = strings.ToLower(p.curTok.Value)
	p.nextToken()

	for {
		switch p.curTok.Type {
		case TokenEOF:
			return cmd, nil
		case TokenError:
			return cmd, errors.New(p.curTok.Value)
		case TokenField:
			name := p.curTok.Value
			p.nextToken() // eat field
			if p.curTok.Type != TokenWord && p.curTok.Type != TokenString {
				return cmd, fmt.Errorf("option %q needs a value", name)
			}
			cmd.Options[name] = p.curTok.Value
		default:
			cmd.Args = append(cmd.Args, p.curTok.Value)
		}
		p.nextToken()
	}
}
