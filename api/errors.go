package api

import (
    "errors"
    "github.com/aleph-zero/abacus/engine"
    "github.com/aleph-zero/abacus/engine/parser"
    "github.com/aleph-zero/abacus/service/session"
    "github.com/go-chi/render"
    "net/http"
)

type ErrResponse struct {
    Err            error  `json:"-"`
    HTTPStatusCode int    `json:"-"`
    StatusText     string `json:"status"`
    ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
    render.Status(r, e.HTTPStatusCode)
    return nil
}

func newErrResponse(err error, status int) render.Renderer {
    return &ErrResponse{
        Err:            err,
        HTTPStatusCode: status,
        StatusText:     http.StatusText(status),
        ErrorText:      err.Error(),
    }
}

func ErrInvalidRequest(err error) render.Renderer {
    return newErrResponse(err, http.StatusBadRequest)
}

func ErrNotFound(err error) render.Renderer {
    return newErrResponse(err, http.StatusNotFound)
}

func ErrConflict(err error) render.Renderer {
    return newErrResponse(err, http.StatusConflict)
}

func ErrInternalServerError(err error) render.Renderer {
    return newErrResponse(err, http.StatusInternalServerError)
}

// ErrFromService maps service and engine errors onto HTTP responses.
func ErrFromService(err error) render.Renderer {
    var parseErr parser.ParseError
    var conversionErr parser.ConversionError

    switch {
    case errors.Is(err, session.Error{ErrorCode: session.NoSuchSession}):
        return ErrNotFound(err)
    case errors.Is(err, engine.Error{ErrorCode: engine.NoHistory}):
        return ErrConflict(err)
    case errors.Is(err, engine.Error{ErrorCode: engine.InvalidOperator}),
        errors.Is(err, engine.Error{ErrorCode: engine.DivisionByZero}),
        errors.Is(err, engine.Error{ErrorCode: engine.NonFiniteResult}),
        errors.As(err, &parseErr),
        errors.As(err, &conversionErr):
        return ErrInvalidRequest(err)
    default:
        return ErrInternalServerError(err)
    }
}
