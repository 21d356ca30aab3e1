package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	"go.uber.org/zap"
)

var titleColor = &props.Color{Red: 0, Green: 51, Blue: 102}

// OrderSlipPDF renders the printable order slip of a sale.
func (e *Exporter) OrderSlipPDF(ctx context.Context, sale *saledomain.Sale) (io.Reader, error) {
	if sale == nil {
		return nil, fmt.Errorf("order slip: sale is required")
	}
	pos := e.pos.Get()

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, pos.ShopName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: titleColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Nota de Pedido", props.Text{Size: 10, Align: align.Center}),
	)

	m.AddRow(8,
		text.NewCol(6, "Pedido: "+sale.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(6, formatTime(sale.Timestamp, e.loc), props.Text{Size: 10, Align: align.Right}),
	)
	if sale.AttendantName != "" {
		m.AddRow(7, text.NewCol(12, "Atendente: "+sale.AttendantName, props.Text{Size: 9}))
	}

	m.AddRow(8,
		text.NewCol(8, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qtd", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center}),
		text.NewCol(3, "Subtotal", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range sale.Items {
		m.AddRow(7,
			text.NewCol(8, item.ProductName, props.Text{Size: 9}),
			text.NewCol(1, strconv.Itoa(item.Quantity), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(3, FormatBRL(item.Subtotal()), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		text.NewCol(6, "TOTAL", props.Text{Style: fontstyle.Bold, Size: 12, Top: 2}),
		text.NewCol(6, FormatBRL(sale.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 12, Top: 2, Align: align.Right}),
	)
	if sale.PaymentMethod == saledomain.PaymentCash && sale.AmountReceived != nil && sale.ChangeGiven != nil {
		m.AddRow(6,
			text.NewCol(6, "Valor Recebido", props.Text{Size: 9}),
			text.NewCol(6, FormatBRL(*sale.AmountReceived), props.Text{Size: 9, Align: align.Right}),
		)
		m.AddRow(6,
			text.NewCol(6, "Troco", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(6, FormatBRL(*sale.ChangeGiven), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		)
	}
	m.AddRow(7, text.NewCol(12, "Pagamento: "+PaymentLabel(sale.PaymentMethod), props.Text{Size: 9}))

	if sale.Notes != "" {
		m.AddRow(12,
			col.New(12).Add(
				text.New("Observações:", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
				text.New(sale.Notes, props.Text{Size: 9, Top: 7}),
			),
		)
	}

	m.AddRow(14,
		text.NewCol(12, "Obrigado por comprar na "+pos.ShopName+"! Volte sempre!", props.Text{
			Size:  9,
			Top:   6,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		e.log.Error("order slip generation failed", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
