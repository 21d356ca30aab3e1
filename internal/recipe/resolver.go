// Package recipe turns sold products into ingredient deductions.
package recipe

import (
	"fmt"

	"github.com/shopspring/decimal"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
)

// Line is a product and how many units of it were sold.
type Line struct {
	ProductID string
	Quantity  int
}

// Resolve returns the deductions implied by selling quantitySold units of the
// product: one per recipe line, line quantity times units sold. A product
// without a recipe yields none.
func Resolve(tx *store.Tx, productID string, quantitySold int) ([]stock.Deduction, error) {
	product, err := tx.Products().Get(productID)
	if err != nil {
		return nil, err
	}
	if len(product.Recipe) == 0 {
		return nil, nil
	}

	units := decimal.NewFromInt(int64(quantitySold))
	ingredients := tx.Ingredients()
	out := make([]stock.Deduction, 0, len(product.Recipe))
	for _, line := range product.Recipe {
		if !ingredients.Has(line.IngredientID) {
			return nil, fmt.Errorf("%w: %s in recipe of %s", ingredientdomain.ErrUnknownIngredient, line.IngredientID, productID)
		}
		out = append(out, stock.Deduction{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity.Mul(units),
		})
	}
	return out, nil
}

// ResolveItems accumulates the deductions of every line of an order.
func ResolveItems(tx *store.Tx, lines []Line) ([]stock.Deduction, error) {
	var all []stock.Deduction
	for _, line := range lines {
		deductions, err := Resolve(tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		all = append(all, deductions...)
	}
	return all, nil
}
