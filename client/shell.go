package client

import (
	"context"
	"fmt"
	"github.com/aleph-zero/abacus/engine"
	"github.com/aleph-zero/abacus/engine/evaluator"
	"github.com/aleph-zero/abacus/engine/parser"
	"log/slog"
	"os"
)

// Local evaluates statements against an in-process Calculator.
type Local struct {
	evaluator *evaluator.Evaluator
}

func NewLocal() *Local {
	return &Local{evaluator: evaluator.New(engine.NewCalculator())}
}

func (l *Local) Execute(_ context.Context, statement string) (*Outcome, error) {
	node, err := parser.Parse(statement)
	if err != nil {
		return nil, err
	}
	if err := l.evaluator.Evaluate(node); err != nil {
		return nil, err
	}
	return &Outcome{
		Value:   l.evaluator.Result,
		Display: engine.FormatValue(l.evaluator.Result),
		Message: l.evaluator.Message,
		Halt:    l.evaluator.Halt,
	}, nil
}

// BootstrapShell runs an interactive calculator that needs no server.
func BootstrapShell() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rl, err := setupReadline("abacus")
	if err != nil {
		slog.Error("Error setting up readline config", "error", err)
		return
	}
	defer rl.Close()

	fmt.Println(evaluator.Usage)
	run(context.Background(), rl, os.Stdout, NewLocal().Execute)
}
