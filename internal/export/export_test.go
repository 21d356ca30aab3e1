package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/config"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newExporter() *Exporter {
	return New(Params{
		Config: config.Config{Timezone: "America/Sao_Paulo"},
		POS:    config.NewStaticPOSConfigHolder(config.DefaultPOSConfig()),
		Log:    zap.NewNop(),
	})
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleSale() saledomain.Sale {
	received := dec("60")
	change := dec("8.50")
	return saledomain.Sale{
		ID:          "sale-1",
		OrderNumber: "3IR007",
		Items: []saledomain.OrderItem{
			{ProductID: "prod-1", ProductName: "X-Burger Clássico", Quantity: 2, UnitPrice: dec("25.50")},
			{ProductID: "prod-3", ProductName: "Refrigerante Lata", Quantity: 1, UnitPrice: dec("0.50")},
		},
		TotalAmount:    dec("51.50"),
		PaymentMethod:  saledomain.PaymentCash,
		Notes:          "sem cebola",
		Timestamp:      time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC),
		AmountReceived: &received,
		ChangeGiven:    &change,
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"25.5":     "R$ 25,50",
		"0":        "R$ 0,00",
		"1234.567": "R$ 1.234,57",
		"1000000":  "R$ 1.000.000,00",
		"-3.2":     "-R$ 3,20",
		"999.999":  "R$ 1.000,00",
		"100":      "R$ 100,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBRL(dec(in)), in)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "relatorio-vendas-hoje.csv", FileName("csv", "Relatório", "Vendas", "hoje"))
	assert.Equal(t, "nota-3ir007.pdf", FileName(".pdf", "nota", "3IR007"))
	assert.Equal(t, "export", FileName("", "  "))
}

func TestWriteSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newExporter().WriteSalesCSV(&buf, []saledomain.Sale{sampleSale()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, salesHeaders, rows[0])
	assert.Equal(t, []string{
		"3IR007",
		"15/01/2024 12:30:00",
		"N/A",
		"2x X-Burger Clássico; 1x Refrigerante Lata",
		"sem cebola",
		"dinheiro",
		"R$ 51,50",
	}, rows[1])
}

func TestWriteInventoryCSV(t *testing.T) {
	reports := []usagereportdomain.DailyUsageReport{{
		ID:   "rep-1",
		Date: "2024-01-01",
		Usages: []usagereportdomain.IngredientUsage{
			{IngredientID: "ing-4", IngredientName: "Alface", Unit: ingredientdomain.UnitKilogram, QuantityUsed: dec("0.5"), Cost: dec("2.5")},
			{IngredientID: "ing-5", IngredientName: "Batata Congelada", Unit: ingredientdomain.UnitKilogram, QuantityUsed: dec("2"), Cost: dec("30")},
		},
		Notes: "feriado",
	}}

	var buf bytes.Buffer
	require.NoError(t, newExporter().WriteInventoryCSV(&buf, reports))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, inventoryHeaders, rows[0])
	assert.Equal(t, []string{"2024-01-01", "Alface", "0.5", "kg", "R$ 2,50", "feriado"}, rows[1])
	assert.Equal(t, "R$ 30,00", rows[2][4])
}

func TestWriteSalesXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newExporter().WriteSalesXLSX(&buf, []saledomain.Sale{sampleSale()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nº Pedido", rows[0][0])
	assert.Equal(t, "3IR007", rows[1][0])
	assert.Equal(t, "51.5", rows[1][6])
}

func TestOrderSlipPDF(t *testing.T) {
	sale := sampleSale()
	r, err := newExporter().OrderSlipPDF(context.Background(), &sale)
	require.NoError(t, err)

	doc, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, err = newExporter().OrderSlipPDF(context.Background(), nil)
	assert.Error(t, err)
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, "Cartão", PaymentLabel(saledomain.PaymentCard))
	assert.Equal(t, "Pix", PaymentLabel(saledomain.PaymentPix))
	assert.Equal(t, "fiado", PaymentLabel("fiado"))
}
