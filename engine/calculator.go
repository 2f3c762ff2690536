package engine

// Calculator holds a current value together with its undo and redo history.
// The undo stack holds, most recent on top, the value held before each
// compute since the last reset. The redo stack is only non-empty after undos
// that have not yet been followed by a compute.
//
// A Calculator is not safe for concurrent use.
type Calculator struct {
	value float64
	undo  *Stack[float64]
	redo  *Stack[float64]
}

func NewCalculator() *Calculator {
	return &Calculator{
		undo: NewStack[float64](),
		redo: NewStack[float64](),
	}
}

// Compute applies op to left and right and commits the result as the new
// current value. The operator and divisor are validated before any state
// changes.
func (c *Calculator) Compute(left, right float64, op Operator) (float64, error) {
	if !op.Valid() {
		return c.value, invalidOperator(op.String())
	}
	if op == Divide && right == 0 {
		return c.value, ErrDivisionByZero
	}

	c.undo.Push(c.value)
	c.redo.Clear()
	c.value = op.Apply(left, right)
	return c.value, nil
}

func (c *Calculator) Undo() (float64, error) {
	if c.undo.IsEmpty() {
		return c.value, ErrNothingToUndo
	}
	return c.swap(c.undo, c.redo)
}

func (c *Calculator) Redo() (float64, error) {
	if c.redo.IsEmpty() {
		return c.value, ErrNothingToRedo
	}
	return c.swap(c.redo, c.undo)
}

// swap installs the top of from as the current value after saving the current
// value on to.
func (c *Calculator) swap(from, to *Stack[float64]) (float64, error) {
	v, err := from.Pop()
	if err != nil {
		return c.value, err
	}
	to.Push(c.value)
	c.value = v
	return c.value, nil
}

func (c *Calculator) Value() float64 {
	return c.value
}

// Reset returns the calculator to its initial state.
func (c *Calculator) Reset() {
	c.value = 0
	c.undo.Clear()
	c.redo.Clear()
}

func (c *Calculator) UndoDepth() int {
	return c.undo.Len()
}

func (c *Calculator) RedoDepth() int {
	return c.redo.Len()
}

// Snapshot is a copy of a Calculator's state. Both histories are ordered
// bottom to top, so the next value to be restored is last.
type Snapshot struct {
	Value float64   `json:"value"`
	Undo  []float64 `json:"undo"`
	Redo  []float64 `json:"redo"`
}

func (c *Calculator) History() Snapshot {
	return Snapshot{
		Value: c.value,
		Undo:  c.undo.Values(),
		Redo:  c.redo.Values(),
	}
}
