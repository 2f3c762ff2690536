package token

import "text/scanner"

type Token struct {
    TokenType
    Lexeme string
    scanner.Position
}

type TokenType int

const (
    NUMBER TokenType = iota
    IDENTIFIER
    SYMBOL
    PLUS
    MINUS
    ASTERISK
    DIVIDE
    CALC
    UNDO
    REDO
    CLEAR
    VALUE
    HISTORY
    HELP
    EXIT
    EOF
)

func (t TokenType) String() string {
    return [...]string{
        "NUMBER",
        "IDENTIFIER",
        "SYMBOL",
        "PLUS",
        "MINUS",
        "ASTERISK",
        "DIVIDE",
        "CALC",
        "UNDO",
        "REDO",
        "CLEAR",
        "VALUE",
        "HISTORY",
        "HELP",
        "EXIT",
        "EOF",
    }[t]
}

// IsOperator reports whether the token type is one of the arithmetic operators.
func (t TokenType) IsOperator() bool {
    switch t {
    case PLUS, MINUS, ASTERISK, DIVIDE:
        return true
    default:
        return false
    }
}
