package parser

import (
    "fmt"
    "github.com/aleph-zero/abacus/engine/ast"
    "github.com/aleph-zero/abacus/engine/token"
    "strconv"
)

/*
   statement                -> compute_statement
                            | 'UNDO' | 'REDO' | 'CLEAR' | 'VALUE' | 'HISTORY' | 'HELP' | 'EXIT'
   compute_statement        -> 'CALC' operand operator operand
   operand                  -> ('-' | '+')? NUMBER
   operator                 -> '+' | '-' | '*' | '/' | IDENTIFIER | SYMBOL
*/

type Parser struct {
    tokens []token.Token
    index  int
}

func New(tokens []token.Token) *Parser {
    return &Parser{
        tokens: tokens,
        index:  0,
    }
}

// Parse returns an abstract syntax tree representing the provided command.
// The whole token stream must be consumed by a single statement.
func (p *Parser) Parse() (ast.VisitableNode, error) {
    stmt, err := p.statement()
    if err != nil {
        return nil, err
    }

    if !p.eof() {
        return nil, ParseError{
            Expected: []token.TokenType{token.EOF},
            Received: p.peek(),
        }
    }
    return stmt, nil
}

func (p *Parser) statement() (ast.VisitableNode, error) {
    switch {
    case p.match(token.CALC):
        return p.computeStatement()
    case p.match(token.UNDO):
        return &ast.UndoStatementNode{}, nil
    case p.match(token.REDO):
        return &ast.RedoStatementNode{}, nil
    case p.match(token.CLEAR):
        return &ast.ClearStatementNode{}, nil
    case p.match(token.VALUE):
        return &ast.ValueStatementNode{}, nil
    case p.match(token.HISTORY):
        return &ast.HistoryStatementNode{}, nil
    case p.match(token.HELP):
        return &ast.HelpStatementNode{}, nil
    case p.match(token.EXIT):
        return &ast.ExitStatementNode{}, nil
    default:
        return nil, ParseError{
            Expected: []token.TokenType{token.CALC, token.UNDO, token.REDO, token.CLEAR,
                token.VALUE, token.HISTORY, token.HELP, token.EXIT},
            Received: p.peek(),
        }
    }
}

func (p *Parser) computeStatement() (ast.VisitableNode, error) {
    left, err := p.operand()
    if err != nil {
        return nil, err
    }

    op, err := p.operator()
    if err != nil {
        return nil, err
    }

    right, err := p.operand()
    if err != nil {
        return nil, err
    }
    return ast.NewComputeStatementNode(left, op, right), nil
}

func (p *Parser) operand() (*ast.NumberLiteralNode, error) {
    sign := 1.0
    if p.match(token.MINUS) {
        sign = -1
    } else {
        p.match(token.PLUS)
    }

    if !p.match(token.NUMBER) {
        return nil, ParseError{
            Expected: []token.TokenType{token.NUMBER},
            Received: p.peek(),
        }
    }

    tok := p.previous()
    value, err := strconv.ParseFloat(tok.Lexeme, 64)
    if err != nil {
        return nil, ConversionError{
            Value: tok,
            err:   err,
        }
    }
    return ast.NewNumberLiteralNode(sign * value), nil
}

func (p *Parser) operator() (*ast.OperatorNode, error) {
    if !p.match(token.PLUS, token.MINUS, token.ASTERISK, token.DIVIDE, token.IDENTIFIER, token.SYMBOL) {
        return nil, ParseError{
            Expected: []token.TokenType{token.PLUS, token.MINUS, token.ASTERISK, token.DIVIDE},
            Received: p.peek(),
        }
    }
    return ast.NewOperatorNode(p.previous().Lexeme), nil
}

/** Helper Methods **/

func (p *Parser) match(tokenTypes ...token.TokenType) bool {
    for _, tokenType := range tokenTypes {
        if p.check(tokenType) {
            p.advance()
            return true
        }
    }
    return false
}

func (p *Parser) check(tokenType token.TokenType) bool {
    if p.eof() {
        return false
    }
    return p.peek().TokenType == tokenType
}

func (p *Parser) advance() token.Token {
    if !p.eof() {
        p.index++
    }
    return p.previous()
}

func (p *Parser) previous() token.Token {
    return p.tokens[p.index-1]
}

func (p *Parser) peek() token.Token {
    return p.tokens[p.index]
}

func (p *Parser) eof() bool {
    return p.peek().TokenType == token.EOF
}

/** Error Handling **/

type ParseError struct {
    Expected []token.TokenType
    Received token.Token
}

func (e ParseError) Error() string {
    received := e.Received.Lexeme
    if e.Received.TokenType == token.EOF {
        received = "end of input"
    }
    return fmt.Sprintf("parser expected one of '%s' received '%s' at line: %d, column: %d",
        e.Expected, received, e.Received.Position.Line, e.Received.Position.Column)
}

type ConversionError struct {
    Value token.Token
    err   error
}

func (e ConversionError) Error() string {
    return fmt.Sprintf("parser cannot convert token '%s' to a number: %s",
        e.Value.Lexeme, e.err)
}

func (e ConversionError) Unwrap() error {
    return e.err
}

// Parse scans and parses a single command.
func Parse(statement string) (ast.VisitableNode, error) {
    tokens, err := LexicalScan(statement)
    if err != nil {
        return nil, err
    }
    return New(tokens).Parse()
}
