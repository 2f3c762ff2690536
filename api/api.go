package api

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "github.com/aleph-zero/abacus/engine"
    "github.com/aleph-zero/abacus/service/identity"
    "github.com/aleph-zero/abacus/service/journal"
    "github.com/aleph-zero/abacus/service/membership"
    "github.com/aleph-zero/abacus/service/session"
    "github.com/go-chi/chi/v5"
    "github.com/go-chi/render"
    "github.com/spf13/cast"
    "net/http"
)

type contextKey string

const sessionKey contextKey = "session"

/* *** Identity API *** */

type IdentityHandler struct {
    service identity.Service
}

func (h *IdentityHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
    data, err := json.Marshal(h.service.Identify())
    if err != nil {
        w.WriteHeader(http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    w.Write(data)
}

func NewIdentityHandler(svc identity.Service) IdentityHandler {
    return IdentityHandler{service: svc}
}

/* *** Membership API *** */

type MembershipHandler struct {
    service *membership.Membership
}

func (h *MembershipHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
    data, err := json.Marshal(h.service.Members())
    if err != nil {
        w.WriteHeader(http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    w.Write(data)
}

func NewMembershipHandler(svc *membership.Membership) MembershipHandler {
    return MembershipHandler{service: svc}
}

/* *** Session API *** */

type SessionHandler struct {
    service session.Service
}

func NewSessionHandler(svc session.Service) SessionHandler {
    return SessionHandler{service: svc}
}

// Routes returns the session API, to be mounted under /sessions.
func (h *SessionHandler) Routes() chi.Router {
    r := chi.NewRouter()
    r.Post("/", h.Create)
    r.Route("/{session}", func(r chi.Router) {
        r.Use(SessionContext)
        r.Get("/", h.Get)
        r.Delete("/", h.Delete)
        r.Post("/compute", h.Compute)
        r.Post("/undo", h.Undo)
        r.Post("/redo", h.Redo)
        r.Post("/reset", h.Reset)
        r.Get("/history", h.History)
        r.Post("/exec", h.Exec)
        r.Post("/batch", h.Batch)
        r.Get("/journal", h.Journal)
    })
    return r
}

func SessionContext(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        var id string
        if id = chi.URLParam(r, "session"); id == "" {
            render.Render(w, r, ErrInvalidRequest(errors.New("missing session id")))
            return
        }
        ctx := context.WithValue(r.Context(), sessionKey, id)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

func sessionFromContext(ctx context.Context) string {
    id, _ := ctx.Value(sessionKey).(string)
    return id
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Create(r.Context())
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &SessionResponse{model})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Get(r.Context(), sessionFromContext(r.Context()))
    h.respond(w, r, model, err)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
    if err := h.service.Delete(r.Context(), sessionFromContext(r.Context())); err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Compute(w http.ResponseWriter, r *http.Request) {
    data := &ComputeRequest{}
    if err := render.Bind(r, data); err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    model, err := h.service.Compute(r.Context(), sessionFromContext(r.Context()), *data.Left, data.Operator, *data.Right)
    h.respond(w, r, model, err)
}

func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Undo(r.Context(), sessionFromContext(r.Context()))
    h.respond(w, r, model, err)
}

func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Redo(r.Context(), sessionFromContext(r.Context()))
    h.respond(w, r, model, err)
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
    model, err := h.service.Reset(r.Context(), sessionFromContext(r.Context()))
    h.respond(w, r, model, err)
}

func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
    snapshot, err := h.service.History(r.Context(), sessionFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Render(w, r, &HistoryResponse{snapshot})
}

func (h *SessionHandler) Exec(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query().Get("q")
    result, err := h.service.Execute(r.Context(), sessionFromContext(r.Context()), q)
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Render(w, r, &ExecResponse{result})
}

// Batch applies a JSON array or stream of compute requests in order. The
// body is decoded in full first, so malformed JSON applies nothing. Rejected
// items leave the session untouched and do not stop the batch.
func (h *SessionHandler) Batch(w http.ResponseWriter, r *http.Request) {
    ctx := r.Context()
    id := sessionFromContext(ctx)

    var items []map[string]interface{}
    defer r.Body.Close()
    if err := ProcessJsonStream(r.Body, func(index int, item map[string]interface{}) error {
        items = append(items, item)
        return nil
    }); err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    response := &BatchResponse{Errors: make([]BatchError, 0)}
    for index, item := range items {
        left, operator, right, err := computeFields(item)
        if err == nil {
            var model *session.Model
            model, err = h.service.Compute(ctx, id, left, operator, right)
            if model != nil {
                response.Model = model
            }
        }

        if errors.Is(err, session.Error{ErrorCode: session.NoSuchSession}) {
            render.Render(w, r, ErrNotFound(err))
            return
        }
        if err != nil {
            response.Rejected++
            response.Errors = append(response.Errors, BatchError{Index: index, Error: err.Error()})
            continue
        }
        response.Applied++
    }

    if response.Model == nil {
        model, err := h.service.Get(ctx, id)
        if err != nil {
            render.Render(w, r, ErrFromService(err))
            return
        }
        response.Model = model
    }
    render.Render(w, r, response)
}

func (h *SessionHandler) Journal(w http.ResponseWriter, r *http.Request) {
    limit := 0
    if l := r.URL.Query().Get("limit"); l != "" {
        var err error
        if limit, err = cast.ToIntE(l); err != nil || limit < 0 {
            render.Render(w, r, ErrInvalidRequest(fmt.Errorf("invalid limit '%s'", l)))
            return
        }
    }

    kind := journal.Kind(r.URL.Query().Get("kind"))
    entries, err := h.service.Journal(r.Context(), sessionFromContext(r.Context()), kind, limit)
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Render(w, r, &JournalResponse{Entries: entries})
}

// respond renders model, or the error mapped to a status when err is set.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, model *session.Model, err error) {
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &SessionResponse{model})
}

func computeFields(item map[string]interface{}) (float64, string, float64, error) {
    left, err := cast.ToFloat64E(item["left"])
    if err != nil || item["left"] == nil {
        return 0, "", 0, fmt.Errorf("invalid left operand: %v", item["left"])
    }
    right, err := cast.ToFloat64E(item["right"])
    if err != nil || item["right"] == nil {
        return 0, "", 0, fmt.Errorf("invalid right operand: %v", item["right"])
    }
    operator, err := cast.ToStringE(item["operator"])
    if err != nil {
        return 0, "", 0, fmt.Errorf("invalid operator: %v", item["operator"])
    }
    return left, operator, right, nil
}

type ComputeRequest struct {
    Left     *float64 `json:"left"`
    Operator string   `json:"operator"`
    Right    *float64 `json:"right"`
}

func (c *ComputeRequest) Bind(r *http.Request) error {
    if c.Left == nil || c.Right == nil {
        return errors.New("missing required operands 'left' and 'right'")
    }
    if c.Operator == "" {
        return errors.New("missing required field 'operator'")
    }
    return nil
}

type SessionResponse struct {
    *session.Model
}

func (s *SessionResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type HistoryResponse struct {
    *engine.Snapshot
}

func (h *HistoryResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type ExecResponse struct {
    *session.ExecuteResult
}

func (e *ExecResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type JournalResponse struct {
    Entries []*journal.Entry `json:"entries"`
}

func (j *JournalResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type BatchError struct {
    Index int    `json:"index"`
    Error string `json:"error"`
}

type BatchResponse struct {
    Applied  int            `json:"applied"`
    Rejected int            `json:"rejected"`
    Errors   []BatchError   `json:"errors"`
    Model    *session.Model `json:"session"`
}

func (b *BatchResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}
