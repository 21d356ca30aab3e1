package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
)

const dateTimeLayout = "02/01/2006 15:04:05"

// FormatBRL renders an amount the way the register shows it: "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + cents
}

// PaymentLabel is the customer-facing name of a payment method.
func PaymentLabel(m saledomain.PaymentMethod) string {
	switch m {
	case saledomain.PaymentCash:
		return "Dinheiro"
	case saledomain.PaymentPix:
		return "Pix"
	case saledomain.PaymentCard:
		return "Cartão"
	}
	return string(m)
}

// FileName slugifies parts into a download name with the given extension.
func FileName(ext string, parts ...string) string {
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "export"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func itemsSummary(items []saledomain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
	}
	return strings.Join(parts, "; ")
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateTimeLayout)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
