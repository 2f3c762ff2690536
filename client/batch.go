package client

import (
    "bufio"
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "github.com/aleph-zero/abacus/telemetry"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/trace"
    "io"
    "net/http"
    "os"
)

const defaultBatchSize = 500

type BatchConfig struct {
    ClientConfig *Config
    Session      string
    Filename     string
    BatchSize    int
}

type BatchOption func(*BatchConfig)

func NewBatchConfig(options ...BatchOption) *BatchConfig {
    cfg := &BatchConfig{BatchSize: defaultBatchSize}
    for _, option := range options {
        option(cfg)
    }
    return cfg
}

// WithSession targets an existing session. Without it a new session is created.
func WithSession(session string) BatchOption {
    return func(cfg *BatchConfig) {
        cfg.Session = session
    }
}

func WithFilename(filename string) BatchOption {
    return func(cfg *BatchConfig) {
        cfg.Filename = filename
    }
}

func WithBatchSize(size int) BatchOption {
    return func(cfg *BatchConfig) {
        if size > 0 {
            cfg.BatchSize = size
        }
    }
}

func WithClientConfig(clientConfig *Config) BatchOption {
    return func(cfg *BatchConfig) {
        cfg.ClientConfig = clientConfig
    }
}

// BatchResult accumulates the server's replies over every chunk sent.
type BatchResult struct {
    Session  string
    Batches  int
    Applied  int
    Rejected int
    Value    float64
    Display  string
}

type batchReply struct {
    Applied  int `json:"applied"`
    Rejected int `json:"rejected"`
    Errors   []struct {
        Index int    `json:"index"`
        Error string `json:"error"`
    } `json:"errors"`
    Session *struct {
        Value   float64 `json:"value"`
        Display string  `json:"display"`
    } `json:"session"`
}

func BootstrapBatch(config *BatchConfig) {
    ctx := context.Background()
    shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL)
    if err == nil {
        defer shutdown()
    }

    if _, err := os.Stat(config.Filename); os.IsNotExist(err) {
        fmt.Printf("Batch file '%s' does not exist\n", config.Filename)
        return
    }

    file, err := os.Open(config.Filename)
    if err != nil {
        fmt.Printf("Error opening file '%s': %s\n", config.Filename, err)
        return
    }
    defer file.Close()

    result, err := RunBatch(ctx, config, newHTTPClient(), file, os.Stdout)
    if err != nil {
        fmt.Printf("Error running batch: %s\n", err)
        return
    }
    fmt.Printf("Session %s: %d applied, %d rejected in %d batches; result %s\n",
        result.Session, result.Applied, result.Rejected, result.Batches, result.Display)
}

// RunBatch reads one JSON compute object per line from r and posts them to
// the session in chunks of config.BatchSize. Lines that are not JSON are
// reported to w and skipped.
func RunBatch(ctx context.Context, config *BatchConfig, client *http.Client, r io.Reader, w io.Writer) (*BatchResult, error) {
    remote := &Remote{ID: config.Session, baseURL: config.ClientConfig.baseURL(), client: client}
    if remote.ID == "" {
        created, err := NewRemote(ctx, remote.baseURL, client)
        if err != nil {
            return nil, err
        }
        remote = created
    }

    result := &BatchResult{Session: remote.ID}
    scanner := bufio.NewScanner(r)
    var batch []map[string]interface{}
    lineNum := 0

    flush := func() error {
        if len(batch) == 0 {
            return nil
        }
        result.Batches++
        err := submitBatch(ctx, remote, batch, result, w)
        batch = nil
        return err
    }

    for scanner.Scan() {
        lineNum++
        line := bytes.TrimSpace(scanner.Bytes())
        if len(line) == 0 {
            continue
        }

        var record map[string]interface{}
        if err := json.Unmarshal(line, &record); err != nil {
            fmt.Fprintf(w, "Line %d: error unmarshalling json: %s\n", lineNum, err)
            continue
        }
        batch = append(batch, record)

        if len(batch) >= config.BatchSize {
            if err := flush(); err != nil {
                return result, err
            }
        }
    }

    if err := flush(); err != nil {
        return result, err
    }
    if err := scanner.Err(); err != nil {
        return result, fmt.Errorf("scanning batch input: %w", err)
    }
    return result, nil
}

func submitBatch(ctx context.Context, remote *Remote, batch []map[string]interface{}, result *BatchResult, w io.Writer) error {
    tr := otel.Tracer(serviceName)
    traceCtx, span := tr.Start(ctx, "client.batch", trace.WithSpanKind(trace.SpanKindClient),
        trace.WithAttributes(attribute.String("session", remote.ID), attribute.Int("size", len(batch))))
    defer span.End()

    data, err := json.Marshal(batch)
    if err != nil {
        return err
    }

    var reply batchReply
    if err := remote.do(traceCtx, http.MethodPost, "/sessions/"+remote.ID+"/batch", data, &reply); err != nil {
        return err
    }

    for _, e := range reply.Errors {
        fmt.Fprintf(w, "Batch %d item %d rejected: %s\n", result.Batches, e.Index, e.Error)
    }
    result.Applied += reply.Applied
    result.Rejected += reply.Rejected
    if reply.Session != nil {
        result.Value = reply.Session.Value
        result.Display = reply.Session.Display
    }

    fmt.Fprintf(w, "Batch %d sent; %d applied, %d rejected\n", result.Batches, reply.Applied, reply.Rejected)
    return nil
}
