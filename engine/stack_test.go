package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_PushPop(t *testing.T) {
	s := NewStack[int]()
	require.True(t, s.IsEmpty())

	for i := 1; i <= 3; i++ {
		s.Push(i)
	}
	require.Equal(t, 3, s.Len())

	top, err := s.Peek()
	require.NoError(t, err)
	require.Equal(t, 3, top)
	require.Equal(t, 3, s.Len())

	for _, expected := range []int{3, 2, 1} {
		v, err := s.Pop()
		require.NoError(t, err)
		require.Equal(t, expected, v)
	}
	require.True(t, s.IsEmpty())
}

func TestStack_Empty(t *testing.T) {
	s := NewStack[string]()

	_, err := s.Pop()
	require.ErrorIs(t, err, ErrEmptyStack)

	_, err = s.Peek()
	require.True(t, errors.Is(err, Error{ErrorCode: EmptyStack}))
	require.Equal(t, 0, s.Len())
}

func TestStack_Clear(t *testing.T) {
	s := NewStack[*int]()
	a, b := 1, 2
	s.Push(&a)
	s.Push(&b)

	backing := s.elements[:2]
	s.Clear()

	require.True(t, s.IsEmpty())
	require.Nil(t, backing[0])
	require.Nil(t, backing[1])

	s.Push(&a)
	v, err := s.Pop()
	require.NoError(t, err)
	require.Same(t, &a, v)
}

func TestStack_Values(t *testing.T) {
	s := NewStack[float64]()
	s.Push(1)
	s.Push(2)

	values := s.Values()
	require.Equal(t, []float64{1, 2}, values)

	values[0] = 42
	v, _ := s.Pop()
	require.Equal(t, float64(2), v)
	v, _ = s.Pop()
	require.Equal(t, float64(1), v)
}
