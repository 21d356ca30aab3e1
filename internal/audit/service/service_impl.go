package service

import (
	"context"
	"strings"

	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	"github.com/smallbiznis/snackbar/internal/auditcontext"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/idgen"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store *store.Store
	Log   *zap.Logger
	Clock clock.Clock
	IDs   *idgen.Generator
	POS   *config.POSConfigHolder
}

type Service struct {
	store *store.Store
	log   *zap.Logger
	clock clock.Clock
	ids   *idgen.Generator
	pos   *config.POSConfigHolder
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("audit.service"),
		clock: p.Clock,
		ids:   p.IDs,
		pos:   p.POS,
	}
}

func (s *Service) Record(ctx context.Context, w auditdomain.Appender, entry auditdomain.LogEntry) (auditdomain.LogEntry, error) {
	action, err := auditdomain.ParseAction(string(entry.Action))
	if err != nil {
		return auditdomain.LogEntry{}, err
	}
	kind, err := lifecycledomain.ParseKind(string(entry.ItemType))
	if err != nil {
		return auditdomain.LogEntry{}, err
	}
	entry.Action = action
	entry.ItemType = kind

	if entry.ID == "" {
		entry.ID = s.ids.NewLogID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock.Now().UTC()
	}
	if strings.TrimSpace(entry.User) == "" {
		entry.User = auditcontext.ActorOrDefault(ctx, s.pos.Get().DefaultUser)
	}

	if err := w.AppendLog(entry); err != nil {
		s.log.Warn("failed to append action log",
			zap.String("action", string(entry.Action)),
			zap.String("item_type", string(entry.ItemType)),
			zap.String("item_id", entry.ItemID),
			zap.Error(err),
		)
		return auditdomain.LogEntry{}, err
	}
	return entry, nil
}

// List returns matching entries newest first. Limit <= 0 returns all.
func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.LogEntry, error) {
	itemID := strings.TrimSpace(req.ItemID)

	var out []auditdomain.LogEntry
	err := s.store.View(ctx, func(tx *store.Tx) error {
		for _, entry := range tx.Logs() {
			if req.ItemType != "" && entry.ItemType != req.ItemType {
				continue
			}
			if req.Action != "" && entry.Action != req.Action {
				continue
			}
			if itemID != "" && entry.ItemID != itemID {
				continue
			}
			out = append(out, entry)
			if req.Limit > 0 && len(out) == req.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
