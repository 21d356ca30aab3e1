package domain

import (
	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

type Category string

const (
	CategorySnack   Category = "Lanche"
	CategoryDrink   Category = "Bebida"
	CategoryCombo   Category = "Combo"
	CategoryDessert Category = "Sobremesa"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySnack, CategoryDrink, CategoryCombo, CategoryDessert:
		return true
	}
	return false
}

// RecipeItem is the quantity of one ingredient consumed per unit sold.
type RecipeItem struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category Category        `json:"category"`
	Recipe   []RecipeItem    `json:"recipe,omitempty"`
	lifecycledomain.State
}

func (p *Product) EntityID() string { return p.ID }

func (p *Product) DisplayName() string { return p.Name }

func (p *Product) Clone() *Product {
	out := *p
	out.State = p.State.CloneState()
	if p.Recipe != nil {
		out.Recipe = append([]RecipeItem(nil), p.Recipe...)
	}
	return &out
}
