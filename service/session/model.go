package session

import (
	"fmt"
	"time"
)

type Model struct {
	ID        string    `json:"id"`
	Value     float64   `json:"value"`
	Display   string    `json:"display"`
	UndoDepth int       `json:"undo_depth"`
	RedoDepth int       `json:"redo_depth"`
	Created   time.Time `json:"created"`
}

type ExecuteResult struct {
	Model
	Message  string        `json:"message,omitempty"`
	Halt     bool          `json:"halt,omitempty"`
	Duration time.Duration `json:"duration"`
}

/* *** Session Config *** */

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

// WithTTL sets how long an idle session survives. Zero keeps sessions until
// they are deleted.
func WithTTL(ttl time.Duration) Option {
	return func(config *Config) {
		config.TTL = ttl
	}
}

func WithCleanupInterval(interval time.Duration) Option {
	return func(config *Config) {
		config.CleanupInterval = interval
	}
}

/* *** Errors *** */

type ErrorCode int

const (
	NoSuchSession ErrorCode = iota + 1
)

type Error struct {
	ErrorCode ErrorCode
	Message   string
	Err       error
}

func noSuchSession(id string) Error {
	return Error{
		ErrorCode: NoSuchSession,
		Message:   fmt.Sprintf("session %s does not exist", id),
	}
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Is(target error) bool {
	if other, ok := target.(Error); ok {
		ignoreErrorCode := other.ErrorCode == 0
		ignoreMessage := other.Message == ""
		matchErrorCode := other.ErrorCode == e.ErrorCode
		matchMessage := other.Message == e.Message

		return matchMessage && matchErrorCode || matchMessage && ignoreErrorCode || ignoreMessage && matchErrorCode
	}
	return false
}
