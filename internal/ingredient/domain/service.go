package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Ingredient, error)
	Get(ctx context.Context, id string) (*Ingredient, error)
	Save(ctx context.Context, req SaveRequest) (*Ingredient, error)
	LowStock(ctx context.Context) ([]Ingredient, error)
	Summary(ctx context.Context) (*Summary, error)
}

type ListRequest struct {
	Category string
	Name     string
}

// SaveRequest creates an ingredient when ID is nil, otherwise it updates the
// fields that are set.
type SaveRequest struct {
	ID       *string
	Name     *string
	Unit     *Unit
	Stock    *decimal.Decimal
	Price    *decimal.Decimal
	Supplier *string
	Category *string
	MinStock *decimal.Decimal
}

type Summary struct {
	Count           int             `json:"count"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
}

var (
	ErrUnknownIngredient = errors.New("unknown_ingredient")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidUnit       = errors.New("invalid_unit")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidMinStock   = errors.New("invalid_min_stock")
)
