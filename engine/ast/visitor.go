package ast

type Visitor interface {
    VisitComputeStatementNode(*ComputeStatementNode) error
    VisitUndoStatementNode(*UndoStatementNode) error
    VisitRedoStatementNode(*RedoStatementNode) error
    VisitClearStatementNode(*ClearStatementNode) error
    VisitValueStatementNode(*ValueStatementNode) error
    VisitHistoryStatementNode(*HistoryStatementNode) error
    VisitHelpStatementNode(*HelpStatementNode) error
    VisitExitStatementNode(*ExitStatementNode) error

    VisitNumberLiteralNode(*NumberLiteralNode) error
    VisitOperatorNode(*OperatorNode) error
}
