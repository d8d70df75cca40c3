package expr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Calculator(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want arith.Num
	}{
		{"addition", "1 + 1", 2},
		{"subtraction", "5 - 3", 2},
		{"multiplication", "2 * 3", 6},
		{"division", "10 / 2", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expr.Evaluate(tt.src)
			require.NoError(t, err)
			assert.True(t, arith.Equal(tt.want, got), "%s = %s", tt.src, arith.Format(got))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
		{"10-4-3", "3"},
		{"100/10/5", "2"},
		{"-3 * -3", "9"},
		{"--2", "2"},
		{"+4", "4"},
		{"1/3 + 1/3 + 1/3", "1"},
		{"1/3", "1/3"},
		{"0.5 * 4", "2.0"},
		{"1.5e2 + 1", "151.0"},
		{"  7\t", "7"},
		{"0 / 0.0", "NaN"},
		{"0 / 2.0", "0.0"},
		{"9223372036854775807 + 1", "9223372036854775808"},
		{"((((((42))))))", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := expr.Evaluate(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, arith.Format(got))
		})
	}
}

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+1", "1 + 1"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"1+(2*3)", "1 + 2 * 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"(1-2)-3", "1 - 2 - 3"},
		{"8/(4/2)", "8 / (4 / 2)"},
		{"-(1+2)", "-(1 + 2)"},
		{"- -1", "-(-1)"},
		{"2*-1", "2 * -1"},
		{"1.50", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := expr.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())

			// Canonical form must parse back to itself.
			again, err := expr.Parse(n.String())
			require.NoError(t, err)
			assert.Equal(t, tt.want, again.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src string
		pos int
		msg string
	}{
		{"1 +", 3, "unexpected end of expression"},
		{"1 + * 2", 4, "unexpected '*'"},
		{"(1 + 2", 6, "missing ')'"},
		{"1 + 2)", 5, "unexpected ')'"},
		{"2 x 3", 2, "unexpected character 'x'"},
		{"1e+", 3, "malformed exponent"},
		{"1.2.3", 3, "unexpected number"},
		{"()", 1, "unexpected ')'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := expr.Parse(tt.src)
			var syntaxErr *expr.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.pos, syntaxErr.Pos)
			assert.Contains(t, syntaxErr.Msg, tt.msg)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t"} {
		_, err := expr.Parse(src)
		assert.ErrorIs(t, err, expr.ErrEmptyExpression)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := expr.Parse("1 + \xff")
	assert.ErrorIs(t, err, expr.ErrInvalidUTF8)
}

func TestParse_Depth(t *testing.T) {
	ok := strings.Repeat("(", expr.MaxDepth) + "1" + strings.Repeat(")", expr.MaxDepth)
	_, err := expr.Parse(ok)
	assert.NoError(t, err)

	tooDeep := "(" + ok + ")"
	_, err = expr.Parse(tooDeep)
	assert.ErrorIs(t, err, expr.ErrTooDeep)

	_, err = expr.Parse(strings.Repeat("-", expr.MaxDepth+1) + "1")
	assert.ErrorIs(t, err, expr.ErrTooDeep)
}

func TestEvaluate_DivideByZero(t *testing.T) {
	_, err := expr.Evaluate("1 + 4 / (2 - 2)")
	require.ErrorIs(t, err, arith.ErrDivideByZero)

	var evalErr *expr.EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, 6, evalErr.Pos)
	assert.Equal(t, arith.OpDivide, evalErr.Op)

	got, err := expr.Evaluate("1 / (2.0 - 2)")
	require.NoError(t, err)
	assert.Equal(t, "+Inf", arith.Format(got))
}
