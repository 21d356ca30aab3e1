package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Save(ctx context.Context, req SaveRequest) (*Product, error)
}

type ListRequest struct {
	Category Category
	Status   lifecycledomain.Status
	Name     string
}

// SaveRequest creates a product when ID is nil, otherwise it updates the
// fields that are set. A non-nil Recipe replaces the whole recipe.
type SaveRequest struct {
	ID       *string
	Name     *string
	Price    *decimal.Decimal
	Category *Category
	Status   *lifecycledomain.Status
	Recipe   *[]RecipeItem
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidRecipe   = errors.New("invalid_recipe")
)
