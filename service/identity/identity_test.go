package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceProvider_Identify(t *testing.T) {
	live := 2
	svc := NewService("node-1", "10.0.0.1", 1234, func() int { return live })

	require.Equal(t, Model{Identity: "node-1", Address: "10.0.0.1", Port: 1234, Sessions: 2}, svc.Identify())

	live = 5
	require.Equal(t, 5, svc.Identify().Sessions)
}
