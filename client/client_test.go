package client

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aleph-zero/abacus/api"
	"github.com/aleph-zero/abacus/service/journal"
	"github.com/aleph-zero/abacus/service/session"
	"github.com/chzyer/readline"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *session.ServiceProvider) {
	journalSvc, err := journal.NewService()
	require.NoError(t, err)
	t.Cleanup(func() { journalSvc.Close() })

	svc := session.NewService(session.NewConfig(), journalSvc)
	router := chi.NewRouter()
	handler := api.NewSessionHandler(svc)
	router.Mount("/sessions", handler.Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, svc
}

func TestRun_Local(t *testing.T) {
	rl := &scriptedReader{lines: []string{
		"calc 5 + 3",
		"",
		"calc 8 * 2",
		"undo",
		"undo",
		"undo",
		"redo",
		"calc 1 / 0",
		"calc 1 % 2",
		"value",
		"clear",
		"exit",
		"calc 1 + 1",
	}}

	var out bytes.Buffer
	run(context.Background(), rl, &out, NewLocal().Execute)

	expected := []string{
		"Result: 8",
		"Result: 16",
		"Result: 8",
		"Result: 0",
		"Error: no operations to undo",
		"Result: 8",
		"Error: cannot divide by zero",
		"Error: invalid operator: %",
		"Result: 8",
		"Calculator reset to 0",
		"Goodbye!",
	}
	require.Equal(t, expected, strings.Split(strings.TrimSpace(out.String()), "\n"))
	require.Len(t, rl.lines, 1, "statements after exit must not run")
}

func TestRun_InterruptOnEmptyLineStops(t *testing.T) {
	rl := &scriptedReader{lines: []string{"calc 2 + 2", "^C", "value"}}

	var out bytes.Buffer
	run(context.Background(), rl, &out, NewLocal().Execute)
	require.Equal(t, "Result: 4\n", out.String())
}

func TestRun_Remote(t *testing.T) {
	server, svc := newTestServer(t)
	ctx := context.Background()

	remote, err := NewRemote(ctx, server.URL, server.Client())
	require.NoError(t, err)
	require.NotEmpty(t, remote.ID)
	require.Equal(t, 1, svc.Count())

	rl := &scriptedReader{lines: []string{"calc 10 - 4", "calc 3 / 0", "redo", "history", "exit"}}
	var out bytes.Buffer
	run(ctx, rl, &out, remote.Execute)

	expected := []string{
		"Result: 6",
		"Error: cannot divide by zero",
		"Error: cannot redo, redo history empty",
		"undo: [0] redo: []",
		"Goodbye!",
	}
	require.Equal(t, expected, strings.Split(strings.TrimSpace(out.String()), "\n"))

	require.NoError(t, remote.Close(ctx))
	require.Equal(t, 0, svc.Count())

	_, err = remote.Execute(ctx, "value")
	require.ErrorContains(t, err, "does not exist")
}

func TestRunBatch(t *testing.T) {
	server, svc := newTestServer(t)
	ctx := context.Background()

	input := strings.Join([]string{
		`{"left": 5, "operator": "+", "right": 3}`,
		`{"left": "8", "operator": "*", "right": "2"}`,
		`not json`,
		``,
		`{"left": 1, "operator": "/", "right": 0}`,
		`{"left": 16, "operator": "-", "right": 6}`,
		`{"left": 10, "operator": "^", "right": 2}`,
	}, "\n")

	host, port, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	remotePort, err := strconv.ParseUint(port, 10, 16)
	require.NoError(t, err)

	config := NewBatchConfig(
		WithClientConfig(NewConfig(WithRemoteAddr(host), WithRemotePort(uint16(remotePort)))),
		WithBatchSize(2))

	var out bytes.Buffer
	result, err := RunBatch(ctx, config, server.Client(), strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, 1, svc.Count(), "a session is created when none is given")

	require.Equal(t, 3, result.Applied)
	require.Equal(t, 2, result.Rejected)
	require.Equal(t, 3, result.Batches)
	require.Equal(t, float64(10), result.Value)
	require.Equal(t, "10", result.Display)
	require.Contains(t, out.String(), "Line 3: error unmarshalling json")
	require.Contains(t, out.String(), "Batch 2 item 0 rejected: cannot divide by zero")

	value, err := svc.Value(ctx, result.Session)
	require.NoError(t, err)
	require.Equal(t, float64(10), value)
}
