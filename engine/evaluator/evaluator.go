package evaluator

import (
	"fmt"
	"strings"

	"github.com/aleph-zero/abacus/engine"
	"github.com/aleph-zero/abacus/engine/ast"
)

const Usage = `Commands:
  calc <num1> <operator> <num2>  - Perform calculation (+, -, *, /)
  undo                           - Undo last operation
  redo                           - Redo last undone operation
  clear                          - Reset calculator to 0
  value                          - Show the current result
  history                        - Show the undo and redo history
  exit                           - Exit calculator`

// Evaluator executes statements against a single Calculator. After each
// statement Result holds the calculator's current value; Message carries any
// text the statement produced and Halt is set by an exit statement.
type Evaluator struct {
	calculator *engine.Calculator
	operator   engine.Operator

	Result  float64
	Message string
	Halt    bool
}

func New(calculator *engine.Calculator) *Evaluator {
	return &Evaluator{calculator: calculator}
}

// Evaluate runs one statement, resetting the outputs of the previous one.
func (e *Evaluator) Evaluate(node ast.VisitableNode) error {
	e.Result, e.Message, e.Halt = e.calculator.Value(), "", false
	return node.Accept(e)
}

func (e *Evaluator) VisitComputeStatementNode(node *ast.ComputeStatementNode) error {
	if err := node.Left.Accept(e); err != nil {
		return err
	}
	left := e.Result
	if err := node.Right.Accept(e); err != nil {
		return err
	}
	right := e.Result
	if err := node.Operator.Accept(e); err != nil {
		e.Result = e.calculator.Value()
		return err
	}

	v, err := e.calculator.Compute(left, right, e.operator)
	e.Result = v
	return err
}

func (e *Evaluator) VisitNumberLiteralNode(node *ast.NumberLiteralNode) error {
	e.Result = node.Value
	return nil
}

func (e *Evaluator) VisitOperatorNode(node *ast.OperatorNode) error {
	op, err := engine.ParseOperator(node.Symbol)
	if err != nil {
		return err
	}
	e.operator = op
	return nil
}

func (e *Evaluator) VisitUndoStatementNode(*ast.UndoStatementNode) error {
	v, err := e.calculator.Undo()
	e.Result = v
	return err
}

func (e *Evaluator) VisitRedoStatementNode(*ast.RedoStatementNode) error {
	v, err := e.calculator.Redo()
	e.Result = v
	return err
}

func (e *Evaluator) VisitClearStatementNode(*ast.ClearStatementNode) error {
	e.calculator.Reset()
	e.Result = e.calculator.Value()
	e.Message = "Calculator reset to 0"
	return nil
}

func (e *Evaluator) VisitValueStatementNode(*ast.ValueStatementNode) error {
	e.Result = e.calculator.Value()
	return nil
}

func (e *Evaluator) VisitHistoryStatementNode(*ast.HistoryStatementNode) error {
	snapshot := e.calculator.History()
	e.Result = snapshot.Value
	e.Message = fmt.Sprintf("undo: [%s] redo: [%s]", join(snapshot.Undo), join(snapshot.Redo))
	return nil
}

func (e *Evaluator) VisitHelpStatementNode(*ast.HelpStatementNode) error {
	e.Message = Usage
	return nil
}

func (e *Evaluator) VisitExitStatementNode(*ast.ExitStatementNode) error {
	e.Message = "Goodbye!"
	e.Halt = true
	return nil
}

func join(values []float64) string {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = engine.FormatValue(v)
	}
	return strings.Join(formatted, " ")
}
