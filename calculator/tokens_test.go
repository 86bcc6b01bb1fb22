package calculator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforward/go-fsm/calculator"
)

func TestTokenize(t *testing.T) {
	tokens, err := calculator.Tokenize(" 123.4+ 56.7 * 2 ")
	require.NoError(t, err)
	assert.Equal(t, []calculator.Token{
		{Kind: calculator.Number, Text: "123.4"},
		{Kind: calculator.Operator, Text: "+"},
		{Kind: calculator.Number, Text: "56.7"},
		{Kind: calculator.Operator, Text: "*"},
		{Kind: calculator.Number, Text: "2"},
	}, tokens)
}

func TestTokenizeSyntaxError(t *testing.T) {
	_, err := calculator.Tokenize("1 +  x")
	require.ErrorIs(t, err, calculator.ErrSyntax)
	var syntax *calculator.SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, 5, syntax.Offset)
	assert.Equal(t, calculator.Number, syntax.Expected)
	assert.Contains(t, err.Error(), "expected number at offset 5")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", calculator.Number.String())
	assert.Equal(t, "operator", calculator.Operator.String())
	assert.Equal(t, "Kind(7)", calculator.Kind(7).String())
}
