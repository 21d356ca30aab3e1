package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/idgen"
	"github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store   *store.Store
	Log     *zap.Logger
	IDs     *idgen.Generator
	Metrics *metrics.POSMetrics `optional:"true"`
}

type Service struct {
	store   *store.Store
	log     *zap.Logger
	ids     *idgen.Generator
	metrics *metrics.POSMetrics
}

func New(p Params) domain.Service {
	return &Service{
		store:   p.Store,
		log:     p.Log.Named("ingredient.service"),
		ids:     p.IDs,
		metrics: p.Metrics,
	}
}

// List returns non-deleted ingredients sorted by name.
func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Ingredient, error) {
	category := strings.TrimSpace(req.Category)
	name := strings.ToLower(strings.TrimSpace(req.Name))
	return s.list(ctx, func(i *domain.Ingredient) bool {
		if category != "" && !strings.EqualFold(i.Category, category) {
			return false
		}
		return name == "" || strings.Contains(strings.ToLower(i.Name), name)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	id = strings.TrimSpace(id)
	var out *domain.Ingredient
	err := s.store.View(ctx, func(tx *store.Tx) error {
		ing, err := tx.Ingredients().Get(id)
		if err != nil {
			return err
		}
		if ing.IsDeleted() {
			return fmt.Errorf("ingredient %s: %w", id, store.ErrNotFound)
		}
		out = ing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Ingredient, error) {
	var (
		saved    *domain.Ingredient
		lowStock int
	)
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		ing := &domain.Ingredient{State: lifecycledomain.State{Status: lifecycledomain.StatusActive}}
		creating := req.ID == nil
		if !creating {
			id := strings.TrimSpace(*req.ID)
			existing, err := tx.Ingredients().Get(id)
			if err != nil {
				return err
			}
			if existing.IsDeleted() {
				return fmt.Errorf("ingredient %s: %w", id, store.ErrNotFound)
			}
			ing = existing
		}

		if err := apply(ing, req, creating); err != nil {
			return err
		}
		if creating {
			ing.ID = s.ids.NewID(idgen.PrefixIngredient)
		}
		if err := tx.Ingredients().Upsert(ing); err != nil {
			return err
		}
		saved = ing
		lowStock = stock.CountLowStock(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SetLowStock(lowStock)
	s.log.Info("ingredient saved",
		zap.String("ingredient_id", saved.ID),
		zap.String("name", saved.Name),
		zap.String("stock", saved.Stock.String()),
	)
	return saved, nil
}

// LowStock returns non-deleted ingredients at or below their minimum, lowest
// stock first.
func (s *Service) LowStock(ctx context.Context) ([]domain.Ingredient, error) {
	out, err := s.list(ctx, func(i *domain.Ingredient) bool { return i.IsLowStock() })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stock.LessThan(out[j].Stock)
	})
	return out, nil
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	items, err := s.list(ctx, nil)
	if err != nil {
		return nil, err
	}
	sum := &domain.Summary{Count: len(items), TotalStockValue: decimal.Zero}
	for i := range items {
		if items[i].IsLowStock() {
			sum.LowStockCount++
		}
		if items[i].IsOutOfStock() {
			sum.OutOfStockCount++
		}
		sum.TotalStockValue = sum.TotalStockValue.Add(items[i].StockValue())
	}
	return sum, nil
}

func (s *Service) list(ctx context.Context, keep func(*domain.Ingredient) bool) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	err := s.store.View(ctx, func(tx *store.Tx) error {
		items := tx.Ingredients().List(func(i *domain.Ingredient) bool {
			return !i.IsDeleted() && (keep == nil || keep(i))
		})
		out = make([]domain.Ingredient, 0, len(items))
		for _, i := range items {
			out = append(out, *i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func apply(ing *domain.Ingredient, req domain.SaveRequest, creating bool) error {
	if req.Name != nil {
		ing.Name = strings.TrimSpace(*req.Name)
	}
	if ing.Name == "" {
		return domain.ErrInvalidName
	}

	if req.Unit != nil {
		ing.Unit = *req.Unit
	}
	if !ing.Unit.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidUnit, ing.Unit)
	}

	if req.Stock != nil {
		ing.Stock = *req.Stock
	}

	if req.Price != nil {
		ing.Price = *req.Price
	} else if creating {
		return domain.ErrInvalidPrice
	}
	if ing.Price.IsNegative() {
		return domain.ErrInvalidPrice
	}

	if req.Supplier != nil {
		ing.Supplier = strings.TrimSpace(*req.Supplier)
	}
	if req.Category != nil {
		ing.Category = strings.TrimSpace(*req.Category)
	}
	if req.MinStock != nil {
		if req.MinStock.IsNegative() {
			return domain.ErrInvalidMinStock
		}
		min := *req.MinStock
		ing.MinStock = &min
	}
	return nil
}
