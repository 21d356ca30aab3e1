package domain

import (
	"github.com/shopspring/decimal"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
)

// DateLayout is the calendar-day format of report dates.
const DateLayout = "2006-01-02"

// IngredientUsage snapshots the ingredient name, unit and cost at report time.
type IngredientUsage struct {
	IngredientID   string                `json:"ingredientId"`
	IngredientName string                `json:"ingredientName"`
	Unit           ingredientdomain.Unit `json:"unit"`
	QuantityUsed   decimal.Decimal       `json:"quantityUsed"`
	Cost           decimal.Decimal       `json:"cost"`
}

type DailyUsageReport struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	Usages    []IngredientUsage `json:"usages"`
	TotalCost decimal.Decimal   `json:"totalCost"`
	Notes     string            `json:"notes,omitempty"`
	lifecycledomain.State
}

func (r *DailyUsageReport) EntityID() string { return r.ID }

func (r *DailyUsageReport) DisplayName() string { return "Relatório de " + r.Date }

func (r *DailyUsageReport) Clone() *DailyUsageReport {
	out := *r
	out.State = r.State.CloneState()
	out.Usages = append([]IngredientUsage(nil), r.Usages...)
	return &out
}
