package domain

import (
	"time"

	"github.com/shopspring/decimal"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "dinheiro"
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "cartao"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentCard:
		return true
	}
	return false
}

// OrderItem snapshots the product name and price at the time of sale.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Sale struct {
	ID             string           `json:"id"`
	OrderNumber    string           `json:"orderNumber"`
	Items          []OrderItem      `json:"items"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	AttendantName  string           `json:"attendantName,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	AmountReceived *decimal.Decimal `json:"amountReceived,omitempty"`
	ChangeGiven    *decimal.Decimal `json:"changeGiven,omitempty"`
	lifecycledomain.State

	// HasReceipt is derived on read and never persisted.
	HasReceipt bool `json:"-"`
}

func (s *Sale) EntityID() string { return s.ID }

func (s *Sale) DisplayName() string { return s.OrderNumber }

func (s *Sale) Clone() *Sale {
	out := *s
	out.State = s.State.CloneState()
	out.Items = append([]OrderItem(nil), s.Items...)
	if s.AmountReceived != nil {
		v := *s.AmountReceived
		out.AmountReceived = &v
	}
	if s.ChangeGiven != nil {
		v := *s.ChangeGiven
		out.ChangeGiven = &v
	}
	return &out
}

// ItemCount sums the units across all lines.
func (s *Sale) ItemCount() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}
