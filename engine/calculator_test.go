package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Compute(t *testing.T) {
	tests := []struct {
		left, right float64
		op          Operator
		expected    float64
	}{
		{5, 3, Add, 8},
		{3, 10, Subtract, -7},
		{4, 2.5, Multiply, 10},
		{7, 2, Divide, 3.5},
		{1, 3, Divide, 1.0 / 3.0},
		{-6, -3, Divide, 2},
	}

	for _, tt := range tests {
		t.Run(FormatValue(tt.left)+tt.op.String()+FormatValue(tt.right), func(t *testing.T) {
			c := NewCalculator()
			v, err := c.Compute(tt.left, tt.right, tt.op)
			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
			require.Equal(t, tt.expected, c.Value())
			require.Equal(t, 1, c.UndoDepth())
		})
	}
}

func TestCalculator_UndoRedoScenario(t *testing.T) {
	c := NewCalculator()

	steps := []struct {
		name     string
		apply    func() (float64, error)
		expected float64
	}{
		{"5+3", func() (float64, error) { return c.Compute(5, 3, Add) }, 8},
		{"8*2", func() (float64, error) { return c.Compute(8, 2, Multiply) }, 16},
		{"undo", c.Undo, 8},
		{"undo", c.Undo, 0},
		{"redo", c.Redo, 8},
		{"redo", c.Redo, 16},
	}

	for _, step := range steps {
		v, err := step.apply()
		require.NoError(t, err, step.name)
		require.Equal(t, step.expected, v, step.name)
	}

	_, err := c.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestCalculator_ComputeClearsRedo(t *testing.T) {
	c := NewCalculator()
	_, err := c.Compute(5, 3, Add)
	require.NoError(t, err)

	v, err := c.Undo()
	require.NoError(t, err)
	require.Equal(t, float64(0), v)
	require.Equal(t, 1, c.RedoDepth())

	v, err = c.Compute(10, 2, Multiply)
	require.NoError(t, err)
	require.Equal(t, float64(20), v)
	require.Equal(t, 0, c.RedoDepth())

	_, err = c.Redo()
	require.True(t, errors.Is(err, Error{ErrorCode: NoHistory}))
	require.Equal(t, float64(20), c.Value())
}

func TestCalculator_MultipleUndosThenCompute(t *testing.T) {
	c := NewCalculator()
	for _, step := range []struct {
		l, r float64
		op   Operator
	}{{10, 5, Add}, {15, 2, Multiply}, {30, 10, Subtract}} {
		_, err := c.Compute(step.l, step.r, step.op)
		require.NoError(t, err)
	}

	_, _ = c.Undo()
	_, _ = c.Undo()
	require.Equal(t, 2, c.RedoDepth())

	_, err := c.Compute(5, 5, Add)
	require.NoError(t, err)
	require.Equal(t, 0, c.RedoDepth())

	expected := Snapshot{Value: 10, Undo: []float64{0, 15}, Redo: []float64{}}
	if diff := cmp.Diff(expected, c.History()); diff != "" {
		t.Errorf("history does not match (-expected, +received):\n%s", diff)
	}
}

func TestCalculator_RoundTrip(t *testing.T) {
	operands := []float64{0, 1, -1, 2.5, 1e10, -3.25}
	ops := []Operator{Add, Subtract, Multiply, Divide}

	for _, op := range ops {
		for _, l := range operands {
			for _, r := range operands {
				if op == Divide && r == 0 {
					continue
				}
				c := NewCalculator()
				_, err := c.Compute(7, 3, Subtract)
				require.NoError(t, err)
				before := c.Value()

				after, err := c.Compute(l, r, op)
				require.NoError(t, err)

				v, err := c.Undo()
				require.NoError(t, err)
				require.Equal(t, before, v)

				v, err = c.Redo()
				require.NoError(t, err)
				require.Equal(t, after, v)
			}
		}
	}
}

func TestCalculator_FreshHistoryErrors(t *testing.T) {
	c := NewCalculator()
	fresh := c.History()

	_, err := c.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
	require.Equal(t, "no operations to undo", err.Error())

	_, err = c.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)

	require.Equal(t, fresh, c.History())
}

func TestCalculator_ErrorsLeaveStateUnchanged(t *testing.T) {
	divideByZero := func(c *Calculator) error { _, err := c.Compute(10, 0, Divide); return err }
	invalidOp := func(c *Calculator) error { _, err := c.Compute(1, 2, Operator(9)); return err }

	tests := []struct {
		name        string
		pendingRedo bool
		apply       func(c *Calculator) error
		expected    error
	}{
		{"redo with empty redo history", false, func(c *Calculator) error { _, err := c.Redo(); return err }, ErrNothingToRedo},
		{"divide by zero", false, divideByZero, ErrDivisionByZero},
		{"divide by negative zero", false, func(c *Calculator) error { _, err := c.Compute(10, math.Copysign(0, -1), Divide); return err }, ErrDivisionByZero},
		{"invalid operator", false, invalidOp, Error{ErrorCode: InvalidOperator}},
		{"divide by zero with redo history", true, divideByZero, ErrDivisionByZero},
		{"invalid operator with redo history", true, invalidOp, Error{ErrorCode: InvalidOperator}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalculator()
			_, err := c.Compute(5, 3, Add)
			require.NoError(t, err)
			_, err = c.Compute(8, 2, Multiply)
			require.NoError(t, err)
			if tt.pendingRedo {
				_, err = c.Undo()
				require.NoError(t, err)
			}

			before := c.History()
			if tt.pendingRedo {
				require.Equal(t, Snapshot{Value: 8, Undo: []float64{0}, Redo: []float64{16}}, before)
			}
			require.ErrorIs(t, tt.apply(c), tt.expected)
			require.Equal(t, before, c.History())
		})
	}
}

func TestCalculator_Reset(t *testing.T) {
	c := NewCalculator()
	_, _ = c.Compute(1, 2, Add)
	_, _ = c.Compute(3, 4, Multiply)
	_, _ = c.Undo()

	c.Reset()
	require.Equal(t, float64(0), c.Value())
	require.Equal(t, 0, c.UndoDepth())
	require.Equal(t, 0, c.RedoDepth())

	_, err := c.Undo()
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestParseOperator(t *testing.T) {
	for symbol, expected := range map[string]Operator{"+": Add, "-": Subtract, "*": Multiply, "/": Divide} {
		op, err := ParseOperator(symbol)
		require.NoError(t, err)
		require.Equal(t, expected, op)
		require.Equal(t, symbol, op.String())
	}

	_, err := ParseOperator("%")
	var e Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, InvalidOperator, e.ErrorCode)
	require.Equal(t, "%", e.Operator)
	require.Equal(t, "invalid operator: %", e.Error())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{8, "8"},
		{-7, "-7"},
		{3.5, "3.5"},
		{math.Copysign(0, -1), "0"},
		{1.0 / 3.0, "0.3333333333333333"},
		{1e21, "1e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatValue(tt.value))
		})
	}
}
