package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind names one of the record collections managed by the recycle bin.
type Kind string

const (
	KindProduct    Kind = "product"
	KindIngredient Kind = "ingredient"
	KindSale       Kind = "sale"
	KindReport     Kind = "report"
	KindReceipt    Kind = "receipt"
)

// Kinds lists every kind in recycle-bin display order.
var Kinds = []Kind{KindProduct, KindIngredient, KindSale, KindReport, KindReceipt}

func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range Kinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
}

type Action string

const (
	ActionDeleted            Action = "deleted"
	ActionRestored           Action = "restored"
	ActionPermanentlyDeleted Action = "permanently_deleted"
)

type Service interface {
	SoftDelete(ctx context.Context, kind Kind, id string) error
	Restore(ctx context.Context, kind Kind, id string) error
	Purge(ctx context.Context, kind Kind, id string) error
	ListDeleted(ctx context.Context, kind Kind) ([]DeletedItem, error)
	RecycleBin(ctx context.Context) (*RecycleBin, error)
}

// DeletedItem is the recycle-bin view of a soft-deleted record.
type DeletedItem struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DeletedAt time.Time `json:"deletedAt"`
}

type RecycleBin struct {
	Products    []DeletedItem `json:"products"`
	Ingredients []DeletedItem `json:"ingredients"`
	Sales       []DeletedItem `json:"sales"`
	Reports     []DeletedItem `json:"reports"`
	Receipts    []DeletedItem `json:"receipts"`
}

// Total counts every item in the bin.
func (b RecycleBin) Total() int {
	return len(b.Products) + len(b.Ingredients) + len(b.Sales) + len(b.Reports) + len(b.Receipts)
}

var (
	ErrInvalidKind            = errors.New("invalid_kind")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
)
