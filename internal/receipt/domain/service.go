package domain

import (
	"context"
	"errors"
	"io"
)

type Service interface {
	Save(ctx context.Context, req SaveRequest) (*Receipt, error)
	Get(ctx context.Context, saleID string) (*Receipt, error)
}

type SaveRequest struct {
	SaleID   string
	FileName string
	// FileType is detected from the content when empty.
	FileType string
	Content  io.Reader
}

var (
	ErrInvalidSale     = errors.New("invalid_sale")
	ErrInvalidFileName = errors.New("invalid_file_name")
	ErrEmptyFile       = errors.New("empty_file")
	ErrReceiptTooLarge = errors.New("receipt_too_large")
)
