package domain

import (
	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitPiece      Unit = "un"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitPiece, UnitLiter, UnitMilliliter:
		return true
	}
	return false
}

// Ingredient is a stock item consumed by recipes and usage reports. Stock is
// signed: sales are never refused for lack of stock.
type Ingredient struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Unit     Unit             `json:"unit"`
	Stock    decimal.Decimal  `json:"stock"`
	Price    decimal.Decimal  `json:"price"`
	Supplier string           `json:"supplier,omitempty"`
	Category string           `json:"category,omitempty"`
	MinStock *decimal.Decimal `json:"minStock,omitempty"`
	lifecycledomain.State
}

func (i *Ingredient) EntityID() string { return i.ID }

func (i *Ingredient) DisplayName() string { return i.Name }

func (i *Ingredient) Clone() *Ingredient {
	out := *i
	out.State = i.State.CloneState()
	if i.MinStock != nil {
		min := *i.MinStock
		out.MinStock = &min
	}
	return &out
}

// IsLowStock reports whether a minimum is configured and stock has reached it.
func (i *Ingredient) IsLowStock() bool {
	if i.MinStock == nil || !i.MinStock.IsPositive() {
		return false
	}
	return i.Stock.LessThanOrEqual(*i.MinStock)
}

func (i *Ingredient) IsOutOfStock() bool {
	return !i.Stock.IsPositive()
}

// StockValue is stock multiplied by unit cost.
func (i *Ingredient) StockValue() decimal.Decimal {
	return i.Stock.Mul(i.Price)
}
