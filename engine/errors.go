package engine

import "fmt"

type ErrorCode int

const (
    InvalidOperator ErrorCode = iota + 1
    DivisionByZero
    EmptyStack
    NoHistory
    NonFiniteResult
)

func (c ErrorCode) String() string {
    switch c {
    case InvalidOperator:
        return "InvalidOperator"
    case DivisionByZero:
        return "DivisionByZero"
    case EmptyStack:
        return "EmptyStack"
    case NoHistory:
        return "NoHistory"
    case NonFiniteResult:
        return "NonFiniteResult"
    default:
        return fmt.Sprintf("ErrorCode(%d)", int(c))
    }
}

var (
    ErrEmptyStack     = Error{ErrorCode: EmptyStack, Message: "empty stack"}
    ErrDivisionByZero = Error{ErrorCode: DivisionByZero, Message: "cannot divide by zero"}
    ErrNothingToUndo  = Error{ErrorCode: NoHistory, Message: "no operations to undo"}
    ErrNothingToRedo  = Error{ErrorCode: NoHistory, Message: "cannot redo, redo history empty"}

    // ErrNonFiniteResult is never returned by Calculator, which follows
    // IEEE-754. It is for callers that cannot represent infinities.
    ErrNonFiniteResult = Error{ErrorCode: NonFiniteResult, Message: "value is not a finite number"}
)

// Error is returned by every failing Calculator and Stack operation. Operator
// is only set for InvalidOperator errors.
type Error struct {
    ErrorCode ErrorCode
    Message   string
    Operator  string
    Err       error
}

func invalidOperator(symbol string) Error {
    return Error{
        ErrorCode: InvalidOperator,
        Message:   fmt.Sprintf("invalid operator: %s", symbol),
        Operator:  symbol,
    }
}

func (e Error) Error() string {
    return e.Message
}

func (e Error) Unwrap() error {
    return e.Err
}

// Is matches on ErrorCode and Message; a zero ErrorCode or empty Message in
// the target acts as a wildcard.
func (e Error) Is(target error) bool {
    if other, ok := target.(Error); ok {
        ignoreErrorCode := other.ErrorCode == 0
        ignoreMessage := other.Message == ""
        matchErrorCode := other.ErrorCode == e.ErrorCode
        matchMessage := other.Message == e.Message

        return matchMessage && matchErrorCode || matchMessage && ignoreErrorCode || ignoreMessage && matchErrorCode
    }
    return false
}
