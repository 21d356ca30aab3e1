package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/idgen"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	receiptservice "github.com/smallbiznis/snackbar/internal/receipt/service"
	"github.com/smallbiznis/snackbar/internal/recipe"
	"github.com/smallbiznis/snackbar/internal/sale/domain"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/pkg/log/ctxlogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store   *store.Store
	Log     *zap.Logger
	Clock   clock.Clock
	IDs     *idgen.Generator
	Ledger  *stock.Ledger
	POS     *config.POSConfigHolder
	Config  config.Config
	Metrics *metrics.POSMetrics `optional:"true"`
}

type Service struct {
	store   *store.Store
	log     *zap.Logger
	clock   clock.Clock
	ids     *idgen.Generator
	ledger  *stock.Ledger
	pos     *config.POSConfigHolder
	loc     *time.Location
	metrics *metrics.POSMetrics
	tracer  trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		store:   p.Store,
		log:     p.Log.Named("sale.service"),
		clock:   p.Clock,
		ids:     p.IDs,
		ledger:  p.Ledger,
		pos:     p.POS,
		loc:     p.Config.Location(),
		metrics: p.Metrics,
		tracer:  otel.Tracer("snackbar/sale"),
	}
}

// RegisterSale validates the order, then in one store transaction allocates
// the order number, deducts recipe ingredients and persists the sale.
func (s *Service) RegisterSale(ctx context.Context, req domain.RegisterSaleRequest) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "sale.RegisterSale")
	defer span.End()
	ctx = ctxlogger.ContextWithOperation(ctx, "register_sale")
	log := ctxlogger.WithContext(ctx, s.log)

	items, total, err := normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	received, change, err := cashFields(req, total)
	if err != nil {
		return nil, err
	}

	pos := s.pos.Get()
	var (
		created   *domain.Sale
		movements []stock.Movement
		lowStock  int
	)
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		n, err := tx.NextOrderNumber()
		if err != nil {
			return err
		}

		lines := make([]recipe.Line, 0, len(items))
		for i := range items {
			product, err := tx.Products().Get(items[i].ProductID)
			if err != nil {
				return err
			}
			// inactive products stay sellable, deleted ones are gone from the menu
			if product.IsDeleted() {
				return fmt.Errorf("%w: product %s", store.ErrNotFound, product.ID)
			}
			if items[i].ProductName == "" {
				items[i].ProductName = product.Name
			}
			lines = append(lines, recipe.Line{ProductID: items[i].ProductID, Quantity: items[i].Quantity})
		}

		deductions, err := recipe.ResolveItems(tx, lines)
		if err != nil {
			return err
		}
		movements, err = s.ledger.Apply(tx, metrics.MovementSourceSale, deductions)
		if err != nil {
			return err
		}

		sale := &domain.Sale{
			ID:             s.ids.NewID(idgen.PrefixSale),
			OrderNumber:    FormatOrderNumber(pos.OrderNumberPrefix, pos.OrderNumberWidth, n),
			Items:          items,
			TotalAmount:    total,
			PaymentMethod:  req.PaymentMethod,
			AttendantName:  strings.TrimSpace(req.AttendantName),
			Notes:          strings.TrimSpace(req.Notes),
			Timestamp:      s.clock.Now().UTC(),
			AmountReceived: received,
			ChangeGiven:    change,
			State:          lifecycledomain.State{Status: lifecycledomain.StatusActive},
		}
		if err := tx.Sales().Upsert(sale); err != nil {
			return err
		}
		created = sale
		lowStock = stock.CountLowStock(tx)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register sale failed")
		log.Warn("register sale failed", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("sale.id", created.ID),
		attribute.String("sale.order_number", created.OrderNumber),
		attribute.Int("sale.items", len(created.Items)),
	)
	s.metrics.ObserveSale(string(created.PaymentMethod), created.TotalAmount)
	s.metrics.SetLowStock(lowStock)
	log.Info("sale registered",
		zap.String("sale_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(created.PaymentMethod)),
		zap.Int("stock_movements", len(movements)),
	)
	return created, nil
}

func (s *Service) ListSales(ctx context.Context, req domain.ListRequest) ([]domain.Sale, error) {
	since := req.Filter.Since(s.clock.Now(), s.loc)

	var out []domain.Sale
	err := s.store.View(ctx, func(tx *store.Tx) error {
		sales := tx.Sales().List(func(sale *domain.Sale) bool {
			if sale.IsDeleted() {
				return false
			}
			return since.IsZero() || !sale.Timestamp.Before(since)
		})
		out = make([]domain.Sale, 0, len(sales))
		for _, sale := range sales {
			sale.HasReceipt = receiptservice.Has(tx, sale.ID)
			out = append(out, *sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	id = strings.TrimSpace(id)
	var out *domain.Sale
	err := s.store.View(ctx, func(tx *store.Tx) error {
		sale, err := tx.Sales().Get(id)
		if err != nil {
			return err
		}
		if sale.IsDeleted() {
			return fmt.Errorf("sale %s: %w", id, store.ErrNotFound)
		}
		sale.HasReceipt = receiptservice.Has(tx, sale.ID)
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FormatOrderNumber renders prefix followed by n zero-padded to width digits.
func FormatOrderNumber(prefix string, width int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

func normalizeItems(in []domain.OrderItem) ([]domain.OrderItem, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, domain.ErrEmptyOrder
	}
	items := make([]domain.OrderItem, 0, len(in))
	total := decimal.Zero
	for _, item := range in {
		item.ProductID = strings.TrimSpace(item.ProductID)
		item.ProductName = strings.TrimSpace(item.ProductName)
		if item.ProductID == "" {
			return nil, decimal.Zero, domain.ErrInvalidProduct
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: %s x%d", domain.ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", domain.ErrInvalidPrice, item.ProductID)
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}
	return items, total, nil
}

// cashFields keeps amount received and change for cash sales only. Change
// defaults to the difference between received and total.
func cashFields(req domain.RegisterSaleRequest, total decimal.Decimal) (*decimal.Decimal, *decimal.Decimal, error) {
	if req.PaymentMethod != domain.PaymentCash || req.AmountReceived == nil {
		return nil, nil, nil
	}
	received := *req.AmountReceived
	if received.LessThan(total) {
		return nil, nil, fmt.Errorf("%w: received %s, total %s", domain.ErrInsufficientPayment, received.StringFixed(2), total.StringFixed(2))
	}
	change := received.Sub(total)
	if req.ChangeGiven != nil {
		if req.ChangeGiven.IsNegative() {
			return nil, nil, fmt.Errorf("%w: negative change", domain.ErrInvalidPrice)
		}
		change = *req.ChangeGiven
	}
	return &received, &change, nil
}
