package seed

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/config"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	productdomain "github.com/smallbiznis/snackbar/internal/product/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Result reports which collections were filled.
type Result struct {
	Products    int
	Ingredients int
}

// EnsureCatalog fills the demo menu and pantry when the respective
// collection is empty. Existing data is never touched.
func EnsureCatalog(ctx context.Context, s *store.Store) (Result, error) {
	if s == nil {
		return Result{}, errors.New("seed store handle is required")
	}

	var res Result
	err := s.Update(ctx, func(tx *store.Tx) error {
		if tx.Ingredients().Len() == 0 {
			for _, ing := range Ingredients() {
				if err := tx.Ingredients().Upsert(ing); err != nil {
					return err
				}
				res.Ingredients++
			}
		}
		if tx.Products().Len() == 0 {
			for _, p := range Products() {
				if err := tx.Products().Upsert(p); err != nil {
					return err
				}
				res.Products++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Products is the starter menu. Only the X-Burger has a recipe.
func Products() []*productdomain.Product {
	active := lifecycledomain.State{Status: lifecycledomain.StatusActive}
	return []*productdomain.Product{
		{
			ID:       "prod-1",
			Name:     "X-Burger Clássico",
			Price:    dec("25.50"),
			Category: productdomain.CategorySnack,
			Recipe: []productdomain.RecipeItem{
				{IngredientID: "ing-1", Quantity: dec("1")},
				{IngredientID: "ing-2", Quantity: dec("150")},
				{IngredientID: "ing-3", Quantity: dec("30")},
			},
			State: active,
		},
		{ID: "prod-2", Name: "Batata Frita Média", Price: dec("12.00"), Category: productdomain.CategorySnack, State: active},
		{ID: "prod-3", Name: "Refrigerante Lata", Price: dec("6.00"), Category: productdomain.CategoryDrink, State: active},
		{ID: "prod-4", Name: "Combo Clássico", Price: dec("40.00"), Category: productdomain.CategoryCombo, State: active},
		{ID: "prod-5", Name: "Milkshake de Chocolate", Price: dec("18.00"), Category: productdomain.CategoryDessert, State: active},
		{ID: "prod-6", Name: "X-Salada Especial", Price: dec("28.00"), Category: productdomain.CategorySnack, State: lifecycledomain.State{Status: lifecycledomain.StatusInactive}},
	}
}

func Ingredients() []*ingredientdomain.Ingredient {
	return []*ingredientdomain.Ingredient{
		ingredient("ing-1", "Pão de Hambúrguer", ingredientdomain.UnitPiece, "100", "1.50", "Pão Dourado", "Pães", "20"),
		ingredient("ing-2", "Carne de Hambúrguer", ingredientdomain.UnitGram, "5000", "0.05", "Carnes Nobres", "Carnes", "1000"),
		ingredient("ing-3", "Queijo Cheddar", ingredientdomain.UnitGram, "2000", "0.07", "Laticínios Bom Sabor", "Frios", "500"),
		ingredient("ing-4", "Alface", ingredientdomain.UnitKilogram, "2", "5.00", "", "Vegetais", "1"),
		ingredient("ing-5", "Batata Congelada", ingredientdomain.UnitKilogram, "10", "15.00", "Gelados da Serra", "Congelados", "5"),
	}
}

func ingredient(id, name string, unit ingredientdomain.Unit, stock, price, supplier, category, minStock string) *ingredientdomain.Ingredient {
	min := dec(minStock)
	return &ingredientdomain.Ingredient{
		ID:       id,
		Name:     name,
		Unit:     unit,
		Stock:    dec(stock),
		Price:    dec(price),
		Supplier: supplier,
		Category: category,
		MinStock: &min,
		State:    lifecycledomain.State{Status: lifecycledomain.StatusActive},
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func runOnStart(lc fx.Lifecycle, cfg config.Config, s *store.Store, log *zap.Logger) {
	if !cfg.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			res, err := EnsureCatalog(ctx, s)
			if err != nil {
				return err
			}
			if res.Products > 0 || res.Ingredients > 0 {
				log.Info("catalog seeded", zap.Int("products", res.Products), zap.Int("ingredients", res.Ingredients))
			}
			return nil
		},
	})
}

var Module = fx.Module("seed", fx.Invoke(runOnStart))
