package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/internal/testkit"
	"github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(env *testkit.Env) *Service {
	return New(Params{
		Store:   env.Store,
		Log:     env.Log,
		Clock:   env.Clock,
		IDs:     env.IDs,
		Ledger:  env.Ledger,
		Metrics: env.Metrics,
	}).(*Service)
}

func lettuce(qty string) domain.UsageLine {
	return domain.UsageLine{IngredientID: "ing-4", QuantityUsed: testkit.Dec(qty)}
}

func TestRegisterReportPricesAndDeducts(t *testing.T) {
	env := testkit.New(t)
	svc := newService(env)

	report, err := svc.RegisterReport(context.Background(), domain.RegisterReportRequest{
		Date:   "2024-01-01",
		Usages: []domain.UsageLine{lettuce("0.5")},
		Notes:  " fim de semana ",
	})
	require.NoError(t, err)

	require.Len(t, report.Usages, 1)
	usage := report.Usages[0]
	assert.Equal(t, "Alface", usage.IngredientName)
	assert.Equal(t, ingredientdomain.UnitKilogram, usage.Unit)
	assert.True(t, usage.Cost.Equal(testkit.Dec("2.50")))
	assert.True(t, report.TotalCost.Equal(testkit.Dec("2.50")))
	assert.Equal(t, "fim de semana", report.Notes)
	assert.Equal(t, "Relatório de 2024-01-01", report.DisplayName())

	assert.True(t, env.Stock(t, "ing-4").Equal(testkit.Dec("1.5")))
	expected := `
# HELP snackbar_usage_reports_total Registered daily usage reports.
# TYPE snackbar_usage_reports_total counter
snackbar_usage_reports_total{env="test",service="snackbar"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(env.Registry, strings.NewReader(expected), "snackbar_usage_reports_total"))
}

func TestRegisterReportSumsLines(t *testing.T) {
	env := testkit.New(t)
	report, err := newService(env).RegisterReport(context.Background(), domain.RegisterReportRequest{
		Date: "2024-01-02",
		Usages: []domain.UsageLine{
			lettuce("0.5"),
			{IngredientID: "ing-5", QuantityUsed: testkit.Dec("2")},
			{IngredientID: "", QuantityUsed: testkit.Dec("9")},
			{IngredientID: "ing-1", QuantityUsed: decimal.Zero},
		},
	})
	require.NoError(t, err)
	assert.Len(t, report.Usages, 2)
	assert.True(t, report.TotalCost.Equal(testkit.Dec("32.50")))
	assert.True(t, env.Stock(t, "ing-5").Equal(testkit.Dec("8")))
	assert.True(t, env.Stock(t, "ing-1").Equal(decimal.NewFromInt(100)))
}

func TestRegisterReportDuplicateDateChangesNothing(t *testing.T) {
	env := testkit.New(t)
	svc := newService(env)
	ctx := context.Background()

	_, err := svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "2024-01-01", Usages: []domain.UsageLine{lettuce("0.5")}})
	require.NoError(t, err)

	_, err = svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "2024-01-01", Usages: []domain.UsageLine{lettuce("1")}})
	assert.ErrorIs(t, err, domain.ErrDuplicateReportDate)
	assert.True(t, env.Stock(t, "ing-4").Equal(testkit.Dec("1.5")))

	reports, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestRegisterReportDateFreedBySoftDelete(t *testing.T) {
	env := testkit.New(t)
	svc := newService(env)
	ctx := context.Background()

	first, err := svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "2024-01-01", Usages: []domain.UsageLine{lettuce("0.5")}})
	require.NoError(t, err)
	require.NoError(t, env.Store.Update(ctx, func(tx *store.Tx) error {
		r, err := tx.Reports().Get(first.ID)
		if err != nil {
			return err
		}
		r.MarkDeleted(env.Clock.Now())
		return tx.Reports().Upsert(r)
	}))

	second, err := svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "2024-01-01", Usages: []domain.UsageLine{lettuce("0.5")}})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = svc.GetReport(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterReportValidation(t *testing.T) {
	env := testkit.New(t)
	svc := newService(env)
	ctx := context.Background()

	_, err := svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "01/01/2024", Usages: []domain.UsageLine{lettuce("1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: "2024-01-01", Usages: []domain.UsageLine{lettuce("0"), lettuce("-1")}})
	assert.ErrorIs(t, err, domain.ErrEmptyReport)

	_, err = svc.RegisterReport(ctx, domain.RegisterReportRequest{
		Date:   "2024-01-01",
		Usages: []domain.UsageLine{lettuce("1"), {IngredientID: "ing-404", QuantityUsed: testkit.Dec("1")}},
	})
	assert.ErrorIs(t, err, ingredientdomain.ErrUnknownIngredient)
	assert.True(t, env.Stock(t, "ing-4").Equal(testkit.Dec("2")))
}

func TestListReportsNewestDateFirst(t *testing.T) {
	env := testkit.New(t)
	svc := newService(env)
	ctx := context.Background()

	for _, date := range []string{"2024-01-03", "2024-01-10", "2024-01-01"} {
		_, err := svc.RegisterReport(ctx, domain.RegisterReportRequest{Date: date, Usages: []domain.UsageLine{lettuce("0.1")}})
		require.NoError(t, err)
	}

	reports, err := svc.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, []string{"2024-01-10", "2024-01-03", "2024-01-01"}, []string{reports[0].Date, reports[1].Date, reports[2].Date})
}
