package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/observability/metrics"
	"github.com/smallbiznis/snackbar/internal/store"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	usagereportservice "github.com/smallbiznis/snackbar/internal/usagereport/service"
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
	Audit   auditdomain.Service
	Metrics *metrics.POSMetrics `optional:"true"`
}

type Service struct {
	store   *store.Store
	log     *zap.Logger
	clock   clock.Clock
	audit   auditdomain.Service
	metrics *metrics.POSMetrics
	tracer  trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		store:   p.Store,
		log:     p.Log.Named("lifecycle.service"),
		clock:   p.Clock,
		audit:   p.Audit,
		metrics: p.Metrics,
		tracer:  otel.Tracer("snackbar/lifecycle"),
	}
}

// SoftDelete moves an active or inactive record to the recycle bin.
func (s *Service) SoftDelete(ctx context.Context, kind domain.Kind, id string) error {
	return s.transition(ctx, kind, id, domain.ActionDeleted, func(tx *store.Tx, b binding, r record) error {
		if r.LifecycleStatus() == domain.StatusDeleted {
			return fmt.Errorf("%w: %s %s is already deleted", domain.ErrInvalidStateTransition, kind, id)
		}
		r.MarkDeleted(s.clock.Now())
		return b.put(r)
	})
}

// Restore brings a deleted record back as active.
func (s *Service) Restore(ctx context.Context, kind domain.Kind, id string) error {
	return s.transition(ctx, kind, id, domain.ActionRestored, func(tx *store.Tx, b binding, r record) error {
		if r.LifecycleStatus() != domain.StatusDeleted {
			return fmt.Errorf("%w: %s %s is not deleted", domain.ErrInvalidStateTransition, kind, id)
		}
		if report, ok := r.(*usagereportdomain.DailyUsageReport); ok && usagereportservice.DateTaken(tx, report.Date, report.ID) {
			return fmt.Errorf("%w: %s", usagereportdomain.ErrDuplicateReportDate, report.Date)
		}
		r.MarkRestored()
		return b.put(r)
	})
}

// Purge removes a deleted record for good. Purging a sale also removes its
// receipt.
func (s *Service) Purge(ctx context.Context, kind domain.Kind, id string) error {
	var cascaded bool
	err := s.transition(ctx, kind, id, domain.ActionPermanentlyDeleted, func(tx *store.Tx, b binding, r record) error {
		cascaded = false
		if r.LifecycleStatus() != domain.StatusDeleted {
			return fmt.Errorf("%w: %s %s is not deleted", domain.ErrInvalidStateTransition, kind, id)
		}
		if err := b.remove(id); err != nil {
			return err
		}
		if kind != domain.KindSale {
			return nil
		}

		receipt, err := tx.Receipts().Get(id)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Receipts().Remove(id); err != nil {
			return err
		}
		if _, err := s.audit.Record(ctx, tx, auditdomain.LogEntry{
			Action:   domain.ActionPermanentlyDeleted,
			ItemType: domain.KindReceipt,
			ItemID:   receipt.SaleID,
			ItemName: receipt.DisplayName(),
		}); err != nil {
			return err
		}
		cascaded = true
		return nil
	})
	if err != nil {
		return err
	}
	// counted once the batch is committed
	if cascaded {
		s.metrics.IncTransition(string(domain.KindReceipt), string(domain.ActionPermanentlyDeleted))
	}
	return nil
}

func (s *Service) ListDeleted(ctx context.Context, kind domain.Kind) ([]domain.DeletedItem, error) {
	var out []domain.DeletedItem
	err := s.store.View(ctx, func(tx *store.Tx) error {
		items, err := deletedItems(tx, kind)
		out = items
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RecycleBin(ctx context.Context) (*domain.RecycleBin, error) {
	bin := &domain.RecycleBin{}
	err := s.store.View(ctx, func(tx *store.Tx) error {
		targets := map[domain.Kind]*[]domain.DeletedItem{
			domain.KindProduct:    &bin.Products,
			domain.KindIngredient: &bin.Ingredients,
			domain.KindSale:       &bin.Sales,
			domain.KindReport:     &bin.Reports,
			domain.KindReceipt:    &bin.Receipts,
		}
		for _, kind := range domain.Kinds {
			items, err := deletedItems(tx, kind)
			if err != nil {
				return err
			}
			*targets[kind] = items
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bin, nil
}

type step func(tx *store.Tx, b binding, r record) error

// transition loads the record, applies fn and appends the action log entry
// in the same store transaction.
func (s *Service) transition(ctx context.Context, kind domain.Kind, id string, action domain.Action, fn step) error {
	ctx, span := s.tracer.Start(ctx, "lifecycle."+string(action))
	defer span.End()
	ctx = ctxlogger.ContextWithOperation(ctx, "lifecycle_"+string(action))
	log := ctxlogger.WithContext(ctx, s.log)

	id = strings.TrimSpace(id)
	span.SetAttributes(
		attribute.String("lifecycle.kind", string(kind)),
		attribute.String("lifecycle.id", id),
	)

	var entry auditdomain.LogEntry
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		b, err := tableFor(tx, kind)
		if err != nil {
			return fmt.Errorf("%w: %q", err, kind)
		}
		r, err := b.get(id)
		if err != nil {
			return err
		}
		name := r.DisplayName()
		if err := fn(tx, b, r); err != nil {
			return err
		}
		entry, err = s.audit.Record(ctx, tx, auditdomain.LogEntry{
			Action:   action,
			ItemType: kind,
			ItemID:   id,
			ItemName: name,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(action)+" failed")
		log.Warn("lifecycle transition failed",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}

	s.metrics.IncTransition(string(kind), string(action))
	log.Info("lifecycle transition",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("action", string(action)),
		zap.String("user", entry.User),
	)
	return nil
}
