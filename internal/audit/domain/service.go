package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

// LogEntry is an append-only record of a recycle-bin action.
type LogEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    lifecycledomain.Action `json:"action"`
	ItemType  lifecycledomain.Kind   `json:"itemType"`
	ItemID    string                 `json:"itemId"`
	ItemName  string                 `json:"itemName"`
	User      string                 `json:"user"`
}

type ListRequest struct {
	ItemType lifecycledomain.Kind
	ItemID   string
	Action   lifecycledomain.Action
	Limit    int
}

// Appender takes log entries inside a store transaction.
type Appender interface {
	AppendLog(entry LogEntry) error
}

type Service interface {
	// Record completes entry (id, time, acting user) and appends it to w.
	Record(ctx context.Context, w Appender, entry LogEntry) (LogEntry, error)
	List(ctx context.Context, req ListRequest) ([]LogEntry, error)
}

func ParseAction(raw string) (lifecycledomain.Action, error) {
	switch a := lifecycledomain.Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case lifecycledomain.ActionDeleted, lifecycledomain.ActionRestored, lifecycledomain.ActionPermanentlyDeleted:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
}

var ErrInvalidAction = errors.New("invalid_action")
