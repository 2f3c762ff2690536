package evaluator

import (
	"testing"

	"github.com/aleph-zero/abacus/engine"
	"github.com/aleph-zero/abacus/engine/parser"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, e *Evaluator, stmt string) error {
	t.Helper()
	node, err := parser.Parse(stmt)
	require.NoError(t, err)
	return e.Evaluate(node)
}

func TestEvaluator_Session(t *testing.T) {
	e := New(engine.NewCalculator())

	steps := []struct {
		stmt     string
		expected float64
	}{
		{`calc 5 + 3`, 8},
		{`calc 8 * 2`, 16},
		{`undo`, 8},
		{`undo`, 0},
		{`redo`, 8},
		{`redo`, 16},
		{`value`, 16},
		{`calc 7 / 2`, 3.5},
		{`calc -3 - 10`, -13},
	}

	for _, step := range steps {
		require.NoError(t, run(t, e, step.stmt), step.stmt)
		require.Equal(t, step.expected, e.Result, step.stmt)
		require.False(t, e.Halt)
	}
}

func TestEvaluator_Errors(t *testing.T) {
	tests := []struct {
		stmt     string
		expected error
	}{
		{`undo`, engine.ErrNothingToUndo},
		{`redo`, engine.ErrNothingToRedo},
		{`calc 10 / 0`, engine.ErrDivisionByZero},
		{`calc 5 % 3`, engine.Error{ErrorCode: engine.InvalidOperator, Message: "invalid operator: %"}},
		{`calc 5 ** 0`, engine.Error{ErrorCode: engine.InvalidOperator}},
	}

	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			calc := engine.NewCalculator()
			e := New(calc)
			err := run(t, e, tt.stmt)
			require.ErrorIs(t, err, tt.expected)
			require.Equal(t, float64(0), e.Result)
			require.Equal(t, 0, calc.UndoDepth())
		})
	}
}

func TestEvaluator_RedoClearedByCompute(t *testing.T) {
	e := New(engine.NewCalculator())
	require.NoError(t, run(t, e, `calc 5 + 3`))
	require.NoError(t, run(t, e, `undo`))
	require.NoError(t, run(t, e, `calc 10 * 2`))
	require.Equal(t, float64(20), e.Result)
	require.ErrorIs(t, run(t, e, `redo`), engine.ErrNothingToRedo)
	require.Equal(t, float64(20), e.Result)
}

func TestEvaluator_Commands(t *testing.T) {
	calc := engine.NewCalculator()
	e := New(calc)

	require.NoError(t, run(t, e, `calc 5 + 3`))
	require.NoError(t, run(t, e, `calc 8 * 2`))
	require.NoError(t, run(t, e, `undo`))

	require.NoError(t, run(t, e, `history`))
	require.Equal(t, "undo: [0] redo: [16]", e.Message)
	require.Equal(t, float64(8), e.Result)

	require.NoError(t, run(t, e, `help`))
	require.Equal(t, Usage, e.Message)

	require.NoError(t, run(t, e, `clear`))
	require.Equal(t, float64(0), e.Result)
	require.Equal(t, 0, calc.UndoDepth())
	require.Equal(t, 0, calc.RedoDepth())

	require.NoError(t, run(t, e, `value`))
	require.Empty(t, e.Message)

	require.NoError(t, run(t, e, `exit`))
	require.True(t, e.Halt)
}
