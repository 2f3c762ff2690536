package parser

import (
    "fmt"
    "github.com/aleph-zero/abacus/engine/token"
    "regexp"
    "strings"
    "text/scanner"
    "unicode"
)

type TokenPattern struct {
    regex *regexp.Regexp
    token.TokenType
}

var patterns = []TokenPattern{
    {regex: regexp.MustCompile(`(?i)^(CALC|COMPUTE)$`), TokenType: token.CALC},
    {regex: regexp.MustCompile(`(?i)^UNDO$`), TokenType: token.UNDO},
    {regex: regexp.MustCompile(`(?i)^REDO$`), TokenType: token.REDO},
    {regex: regexp.MustCompile(`(?i)^(CLEAR|RESET)$`), TokenType: token.CLEAR},
    {regex: regexp.MustCompile(`(?i)^(VALUE|RESULT)$`), TokenType: token.VALUE},
    {regex: regexp.MustCompile(`(?i)^HISTORY$`), TokenType: token.HISTORY},
    {regex: regexp.MustCompile(`(?i)^HELP$`), TokenType: token.HELP},
    {regex: regexp.MustCompile(`(?i)^(EXIT|QUIT)$`), TokenType: token.EXIT},
    {regex: regexp.MustCompile(`^([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`), TokenType: token.NUMBER},
    {regex: regexp.MustCompile(`^[_\pL][_\pL0-9]*$`), TokenType: token.IDENTIFIER},
    {regex: regexp.MustCompile(`^\+$`), TokenType: token.PLUS},
    {regex: regexp.MustCompile(`^-$`), TokenType: token.MINUS},
    {regex: regexp.MustCompile(`^\*$`), TokenType: token.ASTERISK},
    {regex: regexp.MustCompile(`^/$`), TokenType: token.DIVIDE},
    {regex: regexp.MustCompile(`^\S+$`), TokenType: token.SYMBOL},
}

// LexicalScan splits a command line into tokens. Punctuation runs are merged
// into a single lexeme so that "**" surfaces as one (invalid) operator; a
// trailing sign is left alone so that "*-2" still reads as times minus two.
func LexicalScan(src string) ([]token.Token, error) {
    tokens := make([]token.Token, 0, 5)
    var s scanner.Scanner
    s.Init(strings.NewReader(src))
    s.Mode = scanner.ScanIdents | scanner.ScanFloats
    s.Error = func(*scanner.Scanner, string) {}

    for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
        matched := false
        text := s.TokenText()
        position := s.Position

        if tok != scanner.Ident && tok != scanner.Int && tok != scanner.Float {
            for punctuation(s.Peek()) {
                text += string(s.Next())
            }
        }

        for _, pattern := range patterns {
            if pattern.regex.MatchString(text) {
                matched = true
                tokens = append(tokens, token.Token{
                    TokenType: pattern.TokenType,
                    Lexeme:    text,
                    Position:  position,
                })
                break
            }
        }

        if !matched {
            return nil, fmt.Errorf("unrecognized lexical pattern: %s at position: %s", text, position)
        }
    }

    tokens = append(tokens, token.Token{TokenType: token.EOF, Position: s.Pos()})
    return tokens, nil
}

func punctuation(r rune) bool {
    return r != scanner.EOF && (unicode.IsPunct(r) || unicode.IsSymbol(r)) && !strings.ContainsRune("+-._", r)
}
