package calculator

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	scanNumber   = regexp.MustCompile(`^` + NumberPattern + `$`)
	scanOperator = regexp.MustCompile(`^[+\-]$`)
)

// Scan reads whitespace separated words of the form "number (op number)*",
// where op is + or -, and returns their running total. It works on the
// words directly and does not go through a state machine.
func Scan(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	next := func(pattern *regexp.Regexp, expected Kind) (string, bool, error) {
		if !scanner.Scan() {
			return "", false, scanner.Err()
		}
		word := scanner.Text()
		if !pattern.MatchString(word) {
			return "", true, fmt.Errorf("%w: expected %s, got %q", ErrSyntax, expected, word)
		}
		return word, true, nil
	}
	number := func(word string) float64 {
		value, _ := strconv.ParseFloat(word, 64)
		return value
	}

	word, ok, err := next(scanNumber, Number)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrEmpty
	}
	result := number(word)
	for {
		operator, ok, err := next(scanOperator, Operator)
		if err != nil {
			return 0, err
		}
		if !ok {
			return result, nil
		}
		word, ok, err := next(scanNumber, Number)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("%w: trailing operator %q", ErrIncomplete, operator)
		}
		switch operator {
		case "+":
			result += number(word)
		case "-":
			result -= number(word)
		}
	}
}
