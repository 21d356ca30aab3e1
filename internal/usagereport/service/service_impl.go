package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/idgen"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/internal/usagereport/domain"
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
	Metrics *metrics.POSMetrics `optional:"true"`
}

type Service struct {
	store   *store.Store
	log     *zap.Logger
	clock   clock.Clock
	ids     *idgen.Generator
	ledger  *stock.Ledger
	metrics *metrics.POSMetrics
	tracer  trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		store:   p.Store,
		log:     p.Log.Named("usagereport.service"),
		clock:   p.Clock,
		ids:     p.IDs,
		ledger:  p.Ledger,
		metrics: p.Metrics,
		tracer:  otel.Tracer("snackbar/usagereport"),
	}
}

// RegisterReport closes a day: it prices every usage line at the current
// ingredient cost, deducts the quantities and stores the report, all in one
// transaction. Only one non-deleted report may exist per date.
func (s *Service) RegisterReport(ctx context.Context, req domain.RegisterReportRequest) (*domain.DailyUsageReport, error) {
	ctx, span := s.tracer.Start(ctx, "usagereport.RegisterReport")
	defer span.End()
	ctx = ctxlogger.ContextWithOperation(ctx, "register_report")
	log := ctxlogger.WithContext(ctx, s.log)

	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	lines := usableLines(req.Usages)
	if len(lines) == 0 {
		return nil, domain.ErrEmptyReport
	}

	var (
		created   *domain.DailyUsageReport
		movements []stock.Movement
		lowStock  int
	)
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if DateTaken(tx, date, "") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateReportDate, date)
		}

		usages := make([]domain.IngredientUsage, 0, len(lines))
		deductions := make([]stock.Deduction, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			ing, err := tx.Ingredients().Get(line.IngredientID)
			if err != nil {
				return fmt.Errorf("%w: %s", ingredientdomain.ErrUnknownIngredient, line.IngredientID)
			}
			cost := line.QuantityUsed.Mul(ing.Price)
			usages = append(usages, domain.IngredientUsage{
				IngredientID:   ing.ID,
				IngredientName: ing.Name,
				Unit:           ing.Unit,
				QuantityUsed:   line.QuantityUsed,
				Cost:           cost,
			})
			deductions = append(deductions, stock.Deduction{IngredientID: ing.ID, Quantity: line.QuantityUsed})
			total = total.Add(cost)
		}

		var err error
		movements, err = s.ledger.Apply(tx, metrics.MovementSourceReport, deductions)
		if err != nil {
			return err
		}

		report := &domain.DailyUsageReport{
			ID:        s.ids.NewID(idgen.PrefixReport),
			Date:      date,
			Usages:    usages,
			TotalCost: total,
			Notes:     strings.TrimSpace(req.Notes),
			State:     lifecycledomain.State{Status: lifecycledomain.StatusActive},
		}
		if err := tx.Reports().Upsert(report); err != nil {
			return err
		}
		created = report
		lowStock = stock.CountLowStock(tx)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register report failed")
		log.Warn("register report failed", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("report.id", created.ID),
		attribute.String("report.date", created.Date),
	)
	s.metrics.IncReport()
	s.metrics.SetLowStock(lowStock)
	log.Info("usage report registered",
		zap.String("report_id", created.ID),
		zap.String("date", created.Date),
		zap.String("total_cost", created.TotalCost.StringFixed(2)),
		zap.Int("stock_movements", len(movements)),
	)
	return created, nil
}

func (s *Service) ListReports(ctx context.Context) ([]domain.DailyUsageReport, error) {
	var out []domain.DailyUsageReport
	err := s.store.View(ctx, func(tx *store.Tx) error {
		reports := tx.Reports().List(func(r *domain.DailyUsageReport) bool {
			return !r.IsDeleted()
		})
		out = make([]domain.DailyUsageReport, 0, len(reports))
		for _, r := range reports {
			out = append(out, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*domain.DailyUsageReport, error) {
	id = strings.TrimSpace(id)
	var out *domain.DailyUsageReport
	err := s.store.View(ctx, func(tx *store.Tx) error {
		report, err := tx.Reports().Get(id)
		if err != nil {
			return err
		}
		if report.IsDeleted() {
			return fmt.Errorf("report %s: %w", id, store.ErrNotFound)
		}
		out = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DateTaken reports whether a non-deleted report other than exceptID exists
// for date.
func DateTaken(tx *store.Tx, date, exceptID string) bool {
	return len(tx.Reports().List(func(r *domain.DailyUsageReport) bool {
		return r.ID != exceptID && r.Date == date && !r.IsDeleted()
	})) > 0
}

func normalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, raw)
	}
	return parsed.Format(domain.DateLayout), nil
}

// usableLines drops lines without an ingredient or with a non-positive
// quantity.
func usableLines(in []domain.UsageLine) []domain.UsageLine {
	out := make([]domain.UsageLine, 0, len(in))
	for _, line := range in {
		line.IngredientID = strings.TrimSpace(line.IngredientID)
		if line.IngredientID == "" || !line.QuantityUsed.IsPositive() {
			continue
		}
		out = append(out, line)
	}
	return out
}
