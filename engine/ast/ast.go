package ast

type VisitableNode interface {
	Accept(visitor Visitor) error
}

type ComputeStatementNode struct {
	Left     *NumberLiteralNode
	Operator *OperatorNode
	Right    *NumberLiteralNode
}

func NewComputeStatementNode(left *NumberLiteralNode, op *OperatorNode, right *NumberLiteralNode) *ComputeStatementNode {
	return &ComputeStatementNode{Left: left, Operator: op, Right: right}
}

func (n *ComputeStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitComputeStatementNode(n)
}

type NumberLiteralNode struct {
	Value float64
}

func NewNumberLiteralNode(value float64) *NumberLiteralNode {
	return &NumberLiteralNode{Value: value}
}

func (n *NumberLiteralNode) Accept(visitor Visitor) error {
	return visitor.VisitNumberLiteralNode(n)
}

// OperatorNode keeps the operator as written. Whether it names a supported
// operation is decided when the statement is evaluated.
type OperatorNode struct {
	Symbol string
}

func NewOperatorNode(symbol string) *OperatorNode {
	return &OperatorNode{Symbol: symbol}
}

func (n *OperatorNode) Accept(visitor Visitor) error {
	return visitor.VisitOperatorNode(n)
}

type UndoStatementNode struct{}

func (n *UndoStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitUndoStatementNode(n)
}

type RedoStatementNode struct{}

func (n *RedoStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitRedoStatementNode(n)
}

type ClearStatementNode struct{}

func (n *ClearStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitClearStatementNode(n)
}

type ValueStatementNode struct{}

func (n *ValueStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitValueStatementNode(n)
}

type HistoryStatementNode struct{}

func (n *HistoryStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitHistoryStatementNode(n)
}

type HelpStatementNode struct{}

func (n *HelpStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitHelpStatementNode(n)
}

type ExitStatementNode struct{}

func (n *ExitStatementNode) Accept(visitor Visitor) error {
	return visitor.VisitExitStatementNode(n)
}
