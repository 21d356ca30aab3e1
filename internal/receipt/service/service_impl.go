package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/config"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/receipt/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store  *store.Store
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
}

type Service struct {
	store    *store.Store
	log      *zap.Logger
	clock    clock.Clock
	maxBytes int64
}

func New(p Params) domain.Service {
	return &Service{
		store:    p.Store,
		log:      p.Log.Named("receipt.service"),
		clock:    p.Clock,
		maxBytes: p.Config.MaxReceiptBytes,
	}
}

// Save attaches a proof of payment to an active sale, replacing any receipt
// it already had.
func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Receipt, error) {
	saleID := strings.TrimSpace(req.SaleID)
	if saleID == "" {
		return nil, domain.ErrInvalidSale
	}
	name := filepath.Base(strings.TrimSpace(req.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, domain.ErrInvalidFileName
	}
	if req.Content == nil {
		return nil, domain.ErrEmptyFile
	}

	data, err := s.read(req.Content)
	if err != nil {
		return nil, err
	}
	fileType := strings.TrimSpace(req.FileType)
	if fileType == "" {
		fileType = mimetype.Detect(data).String()
	}

	receipt := &domain.Receipt{
		SaleID:     saleID,
		FileName:   name,
		FileType:   fileType,
		FileData:   DataURI(fileType, data),
		UploadedAt: s.clock.Now().UTC(),
		State:      lifecycledomain.State{Status: lifecycledomain.StatusActive},
	}
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		sale, err := tx.Sales().Get(saleID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidSale, err)
		}
		if sale.IsDeleted() {
			return fmt.Errorf("%w: sale %s is deleted", domain.ErrInvalidSale, saleID)
		}
		return tx.Receipts().Upsert(receipt)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("receipt saved",
		zap.String("sale_id", saleID),
		zap.String("file_name", name),
		zap.String("file_type", fileType),
		zap.Int("bytes", len(data)),
	)
	return receipt, nil
}

// Get returns the receipt of a sale, or nil when it has none or it is in the
// recycle bin.
func (s *Service) Get(ctx context.Context, saleID string) (*domain.Receipt, error) {
	var out *domain.Receipt
	err := s.store.View(ctx, func(tx *store.Tx) error {
		receipt, err := tx.Receipts().Get(strings.TrimSpace(saleID))
		if err != nil || receipt.IsDeleted() {
			return nil
		}
		out = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Has reports whether the sale has a receipt outside the recycle bin.
func Has(tx *store.Tx, saleID string) bool {
	receipt, err := tx.Receipts().Get(saleID)
	return err == nil && !receipt.IsDeleted()
}

// DataURI encodes data as a base64 data URI of the given content type.
func DataURI(fileType string, data []byte) string {
	return "data:" + fileType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode returns the raw bytes of a receipt data URI.
func Decode(r *domain.Receipt) ([]byte, error) {
	_, payload, ok := strings.Cut(r.FileData, ";base64,")
	if !ok {
		return nil, fmt.Errorf("receipt %s: not a base64 data uri", r.SaleID)
	}
	return base64.StdEncoding.DecodeString(payload)
}

func (s *Service) read(r io.Reader) ([]byte, error) {
	limit := s.maxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", domain.ErrReceiptTooLarge, limit)
	}
	return data, nil
}
