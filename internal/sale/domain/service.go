package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	RegisterSale(ctx context.Context, req RegisterSaleRequest) (*Sale, error)
	ListSales(ctx context.Context, req ListRequest) ([]Sale, error)
	GetSale(ctx context.Context, id string) (*Sale, error)
}

type RegisterSaleRequest struct {
	Items          []OrderItem
	PaymentMethod  PaymentMethod
	AttendantName  string
	Notes          string
	AmountReceived *decimal.Decimal
	ChangeGiven    *decimal.Decimal
}

// TimeFilter selects a window of sales ending now.
type TimeFilter string

const (
	FilterAll   TimeFilter = ""
	FilterToday TimeFilter = "today"
	FilterWeek  TimeFilter = "7d"
	FilterMonth TimeFilter = "30d"
)

func ParseTimeFilter(raw string) (TimeFilter, error) {
	switch f := TimeFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case FilterAll, FilterToday, FilterWeek, FilterMonth:
		return f, nil
	case "all":
		return FilterAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeFilter, raw)
}

// Since returns the inclusive lower bound of the window in loc, or the zero
// time when the filter is FilterAll.
func (f TimeFilter) Since(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	switch f {
	case FilterToday:
		return midnight
	case FilterWeek:
		return local.AddDate(0, 0, -7)
	case FilterMonth:
		return local.AddDate(0, 0, -30)
	}
	return time.Time{}
}

type ListRequest struct {
	Filter TimeFilter
}

var (
	ErrEmptyOrder           = errors.New("empty_order")
	ErrInvalidProduct       = errors.New("invalid_product")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInsufficientPayment  = errors.New("insufficient_payment")
	ErrInvalidTimeFilter    = errors.New("invalid_time_filter")
)
