// Package stock applies ingredient deductions inside a store transaction.
package stock

import (
	"fmt"

	"github.com/shopspring/decimal"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Deduction is an amount of one ingredient to take out of stock.
type Deduction struct {
	IngredientID string
	Quantity     decimal.Decimal
}

// Movement describes the outcome of a deduction on one ingredient.
type Movement struct {
	IngredientID string
	Name         string
	Unit         ingredientdomain.Unit
	Deducted     decimal.Decimal
	Remaining    decimal.Decimal
	LowStock     bool
	// BecameLow is set when this deduction crossed the minimum.
	BecameLow bool
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Metrics *metrics.POSMetrics `optional:"true"`
}

type Ledger struct {
	log     *zap.Logger
	metrics *metrics.POSMetrics
}

func NewLedger(p Params) *Ledger {
	return &Ledger{
		log:     p.Log.Named("stock.ledger"),
		metrics: p.Metrics,
	}
}

var Module = fx.Module("stock.ledger", fx.Provide(NewLedger))

// Merge folds deductions for the same ingredient together, keeping first-seen
// order. Zero quantities are dropped.
func Merge(deductions []Deduction) []Deduction {
	merged := make([]Deduction, 0, len(deductions))
	pos := map[string]int{}
	for _, d := range deductions {
		if d.Quantity.IsZero() {
			continue
		}
		if i, ok := pos[d.IngredientID]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(d.Quantity)
			continue
		}
		pos[d.IngredientID] = len(merged)
		merged = append(merged, d)
	}
	return merged
}

// Apply subtracts every deduction from stock. All ingredients are checked
// before any is written, a missing one fails the whole batch with
// ErrUnknownIngredient. Stock may go negative. Soft-deleted ingredients are
// still deducted.
func (l *Ledger) Apply(tx *store.Tx, source string, deductions []Deduction) ([]Movement, error) {
	merged := Merge(deductions)
	table := tx.Ingredients()

	loaded := make([]*ingredientdomain.Ingredient, 0, len(merged))
	for _, d := range merged {
		ing, err := table.Get(d.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ingredientdomain.ErrUnknownIngredient, d.IngredientID)
		}
		loaded = append(loaded, ing)
	}

	movements := make([]Movement, 0, len(merged))
	crossed := 0
	for i, d := range merged {
		ing := loaded[i]
		wasLow := ing.IsLowStock()
		ing.Stock = ing.Stock.Sub(d.Quantity)
		if err := table.Upsert(ing); err != nil {
			return nil, err
		}

		mv := Movement{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Deducted:     d.Quantity,
			Remaining:    ing.Stock,
			LowStock:     ing.IsLowStock(),
		}
		mv.BecameLow = mv.LowStock && !wasLow
		if mv.BecameLow {
			crossed++
			l.log.Warn("ingredient reached minimum stock",
				zap.String("ingredient_id", ing.ID),
				zap.String("name", ing.Name),
				zap.String("remaining", ing.Stock.String()),
				zap.String("source", source),
			)
		}
		movements = append(movements, mv)
	}

	l.metrics.AddStockMovements(source, len(movements), crossed)
	return movements, nil
}

// CountLowStock returns how many non-deleted ingredients are at or below
// their minimum.
func CountLowStock(tx *store.Tx) int {
	return len(tx.Ingredients().List(func(i *ingredientdomain.Ingredient) bool {
		return !i.IsDeleted() && i.IsLowStock()
	}))
}
