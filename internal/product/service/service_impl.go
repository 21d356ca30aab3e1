package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/snackbar/internal/idgen"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/product/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store *store.Store
	Log   *zap.Logger
	IDs   *idgen.Generator
}

type Service struct {
	store *store.Store
	log   *zap.Logger
	ids   *idgen.Generator
}

func New(p Params) domain.Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("product.service"),
		ids:   p.IDs,
	}
}

// List returns non-deleted products in menu order.
func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Product, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))

	var out []domain.Product
	err := s.store.View(ctx, func(tx *store.Tx) error {
		items := tx.Products().List(func(p *domain.Product) bool {
			if p.IsDeleted() {
				return false
			}
			if req.Category != "" && p.Category != req.Category {
				return false
			}
			if req.Status != "" && p.Status != req.Status {
				return false
			}
			return name == "" || strings.Contains(strings.ToLower(p.Name), name)
		})
		out = make([]domain.Product, 0, len(items))
		for _, p := range items {
			out = append(out, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	var out *domain.Product
	err := s.store.View(ctx, func(tx *store.Tx) error {
		p, err := tx.Products().Get(id)
		if err != nil {
			return err
		}
		if p.IsDeleted() {
			return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Product, error) {
	var saved *domain.Product
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		product := &domain.Product{State: lifecycledomain.State{Status: lifecycledomain.StatusActive}}
		creating := req.ID == nil
		if !creating {
			id := strings.TrimSpace(*req.ID)
			existing, err := tx.Products().Get(id)
			if err != nil {
				return err
			}
			if existing.IsDeleted() {
				return fmt.Errorf("product %s: %w", id, store.ErrNotFound)
			}
			product = existing
		}

		if err := apply(product, req, creating); err != nil {
			return err
		}
		// an unchanged recipe stays valid even if one of its ingredients was
		// moved to the recycle bin since
		if req.Recipe != nil {
			if err := checkRecipe(tx, product.Recipe); err != nil {
				return err
			}
		}
		if creating {
			product.ID = s.ids.NewID(idgen.PrefixProduct)
		}
		if err := tx.Products().Upsert(product); err != nil {
			return err
		}
		saved = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product saved",
		zap.String("product_id", saved.ID),
		zap.String("name", saved.Name),
		zap.Int("recipe_lines", len(saved.Recipe)),
	)
	return saved, nil
}

func apply(p *domain.Product, req domain.SaveRequest, creating bool) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if p.Name == "" {
		return domain.ErrInvalidName
	}

	if req.Price != nil {
		p.Price = *req.Price
	} else if creating {
		return domain.ErrInvalidPrice
	}
	if p.Price.IsNegative() {
		return domain.ErrInvalidPrice
	}

	if req.Category != nil {
		p.Category = *req.Category
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCategory, p.Category)
	}

	if req.Status != nil {
		switch *req.Status {
		case lifecycledomain.StatusActive, lifecycledomain.StatusInactive:
			p.Status = *req.Status
		default:
			return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *req.Status)
		}
	}

	if req.Recipe != nil {
		p.Recipe = append([]domain.RecipeItem(nil), (*req.Recipe)...)
	}
	return nil
}

// checkRecipe requires positive quantities, one line per ingredient and
// ingredients that are not deleted.
func checkRecipe(tx *store.Tx, recipe []domain.RecipeItem) error {
	seen := make(map[string]struct{}, len(recipe))
	for i := range recipe {
		line := &recipe[i]
		line.IngredientID = strings.TrimSpace(line.IngredientID)
		if line.IngredientID == "" || !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: line %d", domain.ErrInvalidRecipe, i+1)
		}
		if _, dup := seen[line.IngredientID]; dup {
			return fmt.Errorf("%w: %s listed twice", domain.ErrInvalidRecipe, line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}

		ing, err := tx.Ingredients().Get(line.IngredientID)
		if err != nil || ing.IsDeleted() {
			return fmt.Errorf("%w: %s", ingredientdomain.ErrUnknownIngredient, line.IngredientID)
		}
	}
	return nil
}
