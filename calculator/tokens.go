package calculator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrEmpty      = errors.New("empty expression")
	ErrSyntax     = errors.New("syntax error")
	ErrIncomplete = errors.New("incomplete expression")
	ErrFinished   = errors.New("expression already finished")
)

const (
	NumberPattern   = `[0-9]+(\.[0-9]*)?`
	OperatorPattern = `[+\-*/]`
)

var patterns = [...]*regexp.Regexp{
	Number:   regexp.MustCompile(`^\s*(` + NumberPattern + `)`),
	Operator: regexp.MustCompile(`^\s*(` + OperatorPattern + `)`),
}

type Kind int

const (
	Number Kind = iota
	Operator
)

func (kind Kind) String() string {
	switch kind {
	case Number:
		return "number"
	case Operator:
		return "operator"
	}
	return fmt.Sprintf("Kind(%d)", int(kind))
}

type Token struct {
	Kind Kind
	Text string
}

// SyntaxError reports the offset at which the expected kind of token could
// not be read.
type SyntaxError struct {
	Offset   int
	Expected Kind
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s at offset %d", ErrSyntax, e.Expected, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Tokenize splits line into alternating numbers and operators, starting and
// ending with a number. Whitespace between tokens is ignored.
func Tokenize(line string) ([]Token, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmpty
	}
	var tokens []Token
	expected := Number
	offset := 0
	for strings.TrimSpace(line[offset:]) != "" {
		rest := line[offset:]
		match := patterns[expected].FindStringSubmatchIndex(rest)
		if match == nil {
			skipped := len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
			return nil, &SyntaxError{Offset: offset + skipped, Expected: expected}
		}
		tokens = append(tokens, Token{Kind: expected, Text: rest[match[2]:match[3]]})
		offset += match[1]
		expected = 1 - expected
	}
	if expected == Number {
		return nil, fmt.Errorf("%w: trailing operator %q", ErrIncomplete, tokens[len(tokens)-1].Text)
	}
	return tokens, nil
}
