// Package export renders sales and usage reports for download and print.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/smallbiznis/snackbar/internal/config"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	salesHeaders     = []string{"Nº Pedido", "Data", "Atendente", "Itens", "Observações", "Forma de Pagamento", "Valor Total"}
	inventoryHeaders = []string{"Data", "Ingrediente", "Quantidade Usada", "Unidade", "Custo", "Observações do Dia"}
)

const salesSheet = "Vendas"

type Params struct {
	fx.In

	Config config.Config
	POS    *config.POSConfigHolder
	Log    *zap.Logger
}

type Exporter struct {
	loc *time.Location
	pos *config.POSConfigHolder
	log *zap.Logger
}

func New(p Params) *Exporter {
	return &Exporter{
		loc: p.Config.Location(),
		pos: p.POS,
		log: p.Log.Named("export"),
	}
}

var Module = fx.Module("export", fx.Provide(New))

func (e *Exporter) salesRow(sale saledomain.Sale) []string {
	return []string{
		sale.OrderNumber,
		formatTime(sale.Timestamp, e.loc),
		orNA(sale.AttendantName),
		itemsSummary(sale.Items),
		sale.Notes,
		string(sale.PaymentMethod),
		FormatBRL(sale.TotalAmount),
	}
}

// WriteSalesCSV writes one row per sale.
func (e *Exporter) WriteSalesCSV(w io.Writer, sales []saledomain.Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeaders); err != nil {
		return err
	}
	for _, sale := range sales {
		if err := cw.Write(e.salesRow(sale)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInventoryCSV writes one row per ingredient usage of every report.
func (e *Exporter) WriteInventoryCSV(w io.Writer, reports []usagereportdomain.DailyUsageReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeaders); err != nil {
		return err
	}
	for _, report := range reports {
		for _, usage := range report.Usages {
			row := []string{
				report.Date,
				usage.IngredientName,
				usage.QuantityUsed.String(),
				string(usage.Unit),
				FormatBRL(usage.Cost),
				report.Notes,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSalesXLSX writes the sales export as a single-sheet workbook. The
// total column holds numbers so it can be summed.
func (e *Exporter) WriteSalesXLSX(w io.Writer, sales []saledomain.Sale) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return err
	}

	header := make([]any, 0, len(salesHeaders))
	for _, h := range salesHeaders {
		header = append(header, h)
	}
	if err := f.SetSheetRow(salesSheet, "A1", &header); err != nil {
		return err
	}

	for i, sale := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		text := e.salesRow(sale)
		row := make([]any, 0, len(text))
		for _, v := range text[:len(text)-1] {
			row = append(row, v)
		}
		row = append(row, sale.TotalAmount.InexactFloat64())
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return fmt.Errorf("sales row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}
