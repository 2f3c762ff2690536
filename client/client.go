package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/aleph-zero/abacus/telemetry"
	"github.com/chzyer/readline"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	serviceName       = "abacus-cli"
	serviceVersion    = "0.0.1"
	readlineConfigDir = ".config/abacus"
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

type Config struct {
	RemoteAddr string
	RemotePort int
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithRemoteAddr(addr string) Option {
	return func(cfg *Config) {
		cfg.RemoteAddr = addr
	}
}

func WithRemotePort(port uint16) Option {
	return func(cfg *Config) {
		cfg.RemotePort = int(port)
	}
}

func (c *Config) baseURL() string {
	return fmt.Sprintf("http://%s:%d", c.RemoteAddr, c.RemotePort)
}

// Bootstrap runs an interactive shell against a calculator session held by
// a remote server. The session is deleted when the shell exits.
func Bootstrap(config *Config) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rl, err := setupReadline("abacus@remote")
	if err != nil {
		slog.Error("Error setting up readline config", "error", err)
		return
	}
	defer rl.Close()

	shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL)
	if err == nil {
		defer shutdown()
	}

	remote, err := NewRemote(ctx, config.baseURL(), newHTTPClient())
	if err != nil {
		slog.Error("Error creating remote session", "error", err)
		return
	}
	defer func() {
		if err := remote.Close(ctx); err != nil {
			slog.Error("Error deleting remote session", "session", remote.ID, "error", err)
		}
	}()

	fmt.Printf("Connected to %s, session %s\n", config.baseURL(), remote.ID)
	run(ctx, rl, os.Stdout, remote.Execute)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Second * 30,
	}
}

// Outcome is what a single statement produced, wherever it was evaluated.
type Outcome struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Message string  `json:"message"`
	Halt    bool    `json:"halt"`
}

// ExecuteFunc evaluates one statement.
type ExecuteFunc func(ctx context.Context, statement string) (*Outcome, error)

type lineReader interface {
	Readline() (string, error)
}

// run reads statements until EOF, an interrupt on an empty line or a
// statement that halts, printing each outcome to w.
func run(ctx context.Context, rl lineReader, w io.Writer, execute ExecuteFunc) {
	for {
		stmt, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(stmt) == 0 {
				break
			} else {
				continue
			}
		} else if err != nil {
			break
		}

		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		outcome, err := execute(ctx, stmt)
		switch {
		case err != nil:
			fmt.Fprintf(w, "Error: %s\n", err)
		case outcome.Message != "":
			fmt.Fprintln(w, outcome.Message)
		default:
			fmt.Fprintf(w, "Result: %s\n", outcome.Display)
		}

		if outcome != nil && outcome.Halt {
			break
		}
	}
}

/* *** Remote Session *** */

type Remote struct {
	ID      string
	baseURL string
	client  *http.Client
}

type remoteError struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewRemote creates a session on the server at baseURL.
func NewRemote(ctx context.Context, baseURL string, client *http.Client) (*Remote, error) {
	r := &Remote{baseURL: baseURL, client: client}

	var created struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/sessions", nil, &created); err != nil {
		return nil, err
	}
	r.ID = created.ID
	return r, nil
}

func (r *Remote) Execute(ctx context.Context, statement string) (*Outcome, error) {
	tr := otel.Tracer(serviceName)
	traceCtx, span := tr.Start(ctx, "client.exec", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("session", r.ID)))
	defer span.End()

	q := url.Values{}
	q.Set("q", statement)

	var outcome Outcome
	if err := r.do(traceCtx, http.MethodPost, "/sessions/"+r.ID+"/exec?"+q.Encode(), nil, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (r *Remote) Close(ctx context.Context) error {
	return r.do(ctx, http.MethodDelete, "/sessions/"+r.ID, nil, nil)
}

func (r *Remote) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var e remoteError
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil || e.Error == "" {
			return fmt.Errorf("server responded %s", res.Status)
		}
		return errors.New(e.Error)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func setupReadline(prompt string) (rl *readline.Instance, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(home, readlineConfigDir)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, err
	}

	return readline.NewEx(&readline.Config{
		Prompt:            "\033[32m" + prompt + "> \033[0m ",
		HistoryFile:       filepath.Join(dir, "abacus.history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
}
