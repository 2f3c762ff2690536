package engine

import "fmt"

type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

var operators = map[string]Operator{
	"+": Add,
	"-": Subtract,
	"*": Multiply,
	"/": Divide,
}

// ParseOperator maps an operator symbol to its Operator. Unknown symbols
// yield an InvalidOperator error carrying the symbol.
func ParseOperator(symbol string) (Operator, error) {
	op, ok := operators[symbol]
	if !ok {
		return 0, invalidOperator(symbol)
	}
	return op, nil
}

func (o Operator) Valid() bool {
	return o >= Add && o <= Divide
}

// Apply performs the operation with IEEE-754 semantics. Callers are
// responsible for rejecting a zero divisor.
func (o Operator) Apply(left, right float64) float64 {
	switch o {
	case Add:
		return left + right
	case Subtract:
		return left - right
	case Multiply:
		return left * right
	case Divide:
		return left / right
	default:
		panic(fmt.Sprintf("failed to apply operator: %s", o))
	}
}

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}
