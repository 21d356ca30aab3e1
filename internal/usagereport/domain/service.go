package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	RegisterReport(ctx context.Context, req RegisterReportRequest) (*DailyUsageReport, error)
	ListReports(ctx context.Context) ([]DailyUsageReport, error)
	GetReport(ctx context.Context, id string) (*DailyUsageReport, error)
}

type UsageLine struct {
	IngredientID string
	QuantityUsed decimal.Decimal
}

type RegisterReportRequest struct {
	Date   string
	Usages []UsageLine
	Notes  string
}

var (
	ErrInvalidDate         = errors.New("invalid_date")
	ErrDuplicateReportDate = errors.New("duplicate_report_date")
	ErrEmptyReport         = errors.New("empty_report")
)
