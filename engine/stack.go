package engine

type Stack[T any] struct {
    elements []T
}

func NewStack[T any]() *Stack[T] {
    return &Stack[T]{elements: make([]T, 0)}
}

func (s *Stack[T]) Push(element T) {
    s.elements = append(s.elements, element)
}

// Pop removes and returns the top element, or ErrEmptyStack if there is none.
func (s *Stack[T]) Pop() (v T, err error) {
    var zero T
    n := len(s.elements)
    if n == 0 {
        return zero, ErrEmptyStack
    }

    v = s.elements[n-1]
    s.elements[n-1] = zero
    s.elements = s.elements[:n-1]
    return v, nil
}

func (s *Stack[T]) Peek() (v T, err error) {
    n := len(s.elements)
    if n == 0 {
        return v, ErrEmptyStack
    }
    return s.elements[n-1], nil
}

func (s *Stack[T]) Len() int {
    return len(s.elements)
}

func (s *Stack[T]) IsEmpty() bool {
    return len(s.elements) == 0
}

// Clear truncates the stack in place. The backing array is kept for reuse but
// its released slots are zeroed.
func (s *Stack[T]) Clear() {
    clear(s.elements)
    s.elements = s.elements[:0]
}

// Values returns a copy of the elements ordered bottom to top.
func (s *Stack[T]) Values() []T {
    values := make([]T, len(s.elements))
    copy(values, s.elements)
    return values
}
