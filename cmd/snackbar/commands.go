package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/snackbar/internal/app"
	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	"github.com/smallbiznis/snackbar/internal/export"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	productdomain "github.com/smallbiznis/snackbar/internal/product/domain"
	receiptdomain "github.com/smallbiznis/snackbar/internal/receipt/domain"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	"github.com/smallbiznis/snackbar/internal/seed"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/spf13/pflag"
)

type action func(ctx context.Context, s app.Services, out io.Writer) error

type command struct {
	name  string
	usage string
	setup func(fs *pflag.FlagSet) action
}

var commands = map[string]command{}

func register(c command) {
	commands[c.name] = c
}

func init() {
	register(command{name: "seed", usage: "insert the demo menu and pantry into empty collections", setup: seedCmd})
	register(command{name: "products", usage: "list the menu", setup: productsCmd})
	register(command{name: "ingredients", usage: "list ingredients and stock", setup: ingredientsCmd})
	register(command{name: "low-stock", usage: "list ingredients at or below their minimum", setup: lowStockCmd})
	register(command{name: "stock-summary", usage: "show inventory totals", setup: stockSummaryCmd})
	register(command{name: "sales", usage: "list sales in a time range", setup: salesCmd})
	register(command{name: "register-sale", usage: "register an order and deduct its recipes", setup: registerSaleCmd})
	register(command{name: "reports", usage: "list daily usage reports", setup: reportsCmd})
	register(command{name: "register-report", usage: "close a day with its ingredient usage", setup: registerReportCmd})
	register(command{name: "attach-receipt", usage: "attach a proof of payment to a sale", setup: attachReceiptCmd})
	register(command{name: "recycle-bin", usage: "list soft-deleted records", setup: recycleBinCmd})
	register(command{name: "delete", usage: "move a record to the recycle bin", setup: transitionCmd(lifecycledomain.ActionDeleted)})
	register(command{name: "restore", usage: "restore a record from the recycle bin", setup: transitionCmd(lifecycledomain.ActionRestored)})
	register(command{name: "purge", usage: "permanently delete a record from the recycle bin", setup: transitionCmd(lifecycledomain.ActionPermanentlyDeleted)})
	register(command{name: "logs", usage: "show the action log", setup: logsCmd})
	register(command{name: "export-sales", usage: "export sales as csv or xlsx", setup: exportSalesCmd})
	register(command{name: "export-inventory", usage: "export usage reports as csv", setup: exportInventoryCmd})
	register(command{name: "order-slip", usage: "render the order slip of a sale as pdf", setup: orderSlipCmd})
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func seedCmd(fs *pflag.FlagSet) action {
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		res, err := seed.EnsureCatalog(ctx, s.Store)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d products, %d ingredients\n", res.Products, res.Ingredients)
		return nil
	}
}

func productsCmd(fs *pflag.FlagSet) action {
	category := fs.String("category", "", "Lanche, Bebida, Combo or Sobremesa")
	status := fs.String("status", "", "active or inactive")
	name := fs.String("name", "", "name contains")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		items, err := s.Products.List(ctx, productdomain.ListRequest{
			Category: productdomain.Category(*category),
			Status:   lifecycledomain.Status(*status),
			Name:     *name,
		})
		if err != nil {
			return err
		}
		tw := table(out)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTATUS\tRECIPE")
		for _, p := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, export.FormatBRL(p.Price), p.Status, len(p.Recipe))
		}
		return tw.Flush()
	}
}

func printIngredients(out io.Writer, items []ingredientdomain.Ingredient) error {
	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tSTOCK\tUNIT\tMIN\tPRICE\tLOW")
	for _, i := range items {
		minStock := "-"
		if i.MinStock != nil {
			minStock = i.MinStock.String()
		}
		low := ""
		if i.IsLowStock() {
			low = "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i.ID, i.Name, i.Stock.String(), i.Unit, minStock, export.FormatBRL(i.Price), low)
	}
	return tw.Flush()
}

func ingredientsCmd(fs *pflag.FlagSet) action {
	category := fs.String("category", "", "ingredient category")
	name := fs.String("name", "", "name contains")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		items, err := s.Ingredients.List(ctx, ingredientdomain.ListRequest{Category: *category, Name: *name})
		if err != nil {
			return err
		}
		return printIngredients(out, items)
	}
}

func lowStockCmd(fs *pflag.FlagSet) action {
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		items, err := s.Ingredients.LowStock(ctx)
		if err != nil {
			return err
		}
		return printIngredients(out, items)
	}
}

func stockSummaryCmd(fs *pflag.FlagSet) action {
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		sum, err := s.Ingredients.Summary(ctx)
		if err != nil {
			return err
		}
		tw := table(out)
		fmt.Fprintf(tw, "ingredients\t%d\n", sum.Count)
		fmt.Fprintf(tw, "low stock\t%d\n", sum.LowStockCount)
		fmt.Fprintf(tw, "out of stock\t%d\n", sum.OutOfStockCount)
		fmt.Fprintf(tw, "stock value\t%s\n", export.FormatBRL(sum.TotalStockValue))
		return tw.Flush()
	}
}

func listSales(ctx context.Context, s app.Services, rawRange string) ([]saledomain.Sale, saledomain.TimeFilter, error) {
	filter, err := saledomain.ParseTimeFilter(rawRange)
	if err != nil {
		return nil, "", err
	}
	sales, err := s.Sales.ListSales(ctx, saledomain.ListRequest{Filter: filter})
	return sales, filter, err
}

func salesCmd(fs *pflag.FlagSet) action {
	rng := fs.String("range", "today", "today, 7d, 30d or all")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		sales, _, err := listSales(ctx, s, *rng)
		if err != nil {
			return err
		}
		tw := table(out)
		fmt.Fprintln(tw, "ORDER\tID\tWHEN\tITEMS\tPAYMENT\tTOTAL\tRECEIPT")
		total := decimal.Zero
		for _, sale := range sales {
			receipt := ""
			if sale.HasReceipt {
				receipt = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				sale.OrderNumber, sale.ID, sale.Timestamp.In(s.Config.Location()).Format("02/01 15:04"),
				sale.ItemCount(), export.PaymentLabel(sale.PaymentMethod), export.FormatBRL(sale.TotalAmount), receipt)
			total = total.Add(sale.TotalAmount)
		}
		fmt.Fprintf(tw, "\t\t\t\t\t%s\t\n", export.FormatBRL(total))
		return tw.Flush()
	}
}

func registerSaleCmd(fs *pflag.FlagSet) action {
	items := fs.StringArray("item", nil, "product and quantity, e.g. prod-1:2 (repeatable)")
	payment := fs.String("payment", string(saledomain.PaymentPix), "dinheiro, pix or cartao")
	received := fs.String("received", "", "cash received")
	attendant := fs.String("attendant", "", "attendant name")
	notes := fs.String("notes", "", "order notes")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		req := saledomain.RegisterSaleRequest{
			PaymentMethod: saledomain.PaymentMethod(*payment),
			AttendantName: *attendant,
			Notes:         *notes,
		}
		for _, raw := range *items {
			id, qty, err := parseItem(raw)
			if err != nil {
				return err
			}
			product, err := s.Products.Get(ctx, id)
			if err != nil {
				return err
			}
			req.Items = append(req.Items, saledomain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
				UnitPrice:   product.Price,
			})
		}
		if *received != "" {
			amount, err := parseDecimal(*received)
			if err != nil {
				return fmt.Errorf("received: %w", err)
			}
			req.AmountReceived = &amount
		}

		sale, err := s.Sales.RegisterSale(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "order %s (%s) total %s\n", sale.OrderNumber, sale.ID, export.FormatBRL(sale.TotalAmount))
		if sale.ChangeGiven != nil {
			fmt.Fprintf(out, "change %s\n", export.FormatBRL(*sale.ChangeGiven))
		}
		return nil
	}
}

func reportsCmd(fs *pflag.FlagSet) action {
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		reports, err := s.Reports.ListReports(ctx)
		if err != nil {
			return err
		}
		tw := table(out)
		fmt.Fprintln(tw, "DATE\tID\tLINES\tCOST\tNOTES")
		for _, r := range reports {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Date, r.ID, len(r.Usages), export.FormatBRL(r.TotalCost), r.Notes)
		}
		return tw.Flush()
	}
}

func registerReportCmd(fs *pflag.FlagSet) action {
	date := fs.String("date", "", "report day, YYYY-MM-DD")
	usages := fs.StringArray("use", nil, "ingredient and quantity used, e.g. ing-4:0.5 (repeatable)")
	notes := fs.String("notes", "", "notes of the day")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		req := usagereportdomain.RegisterReportRequest{Date: *date, Notes: *notes}
		for _, raw := range *usages {
			id, qty, err := parseUsage(raw)
			if err != nil {
				return err
			}
			req.Usages = append(req.Usages, usagereportdomain.UsageLine{IngredientID: id, QuantityUsed: qty})
		}
		report, err := s.Reports.RegisterReport(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "report %s (%s) cost %s\n", report.Date, report.ID, export.FormatBRL(report.TotalCost))
		return nil
	}
}

func attachReceiptCmd(fs *pflag.FlagSet) action {
	saleID := fs.String("sale", "", "sale id")
	path := fs.String("file", "", "receipt image or pdf")
	fileType := fs.String("type", "", "content type, detected when empty")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		f, err := os.Open(*path)
		if err != nil {
			return err
		}
		defer f.Close()

		receipt, err := s.Receipts.Save(ctx, receiptdomain.SaveRequest{
			SaleID:   *saleID,
			FileName: filepath.Base(*path),
			FileType: *fileType,
			Content:  f,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "receipt %s (%s) attached to %s\n", receipt.FileName, receipt.FileType, receipt.SaleID)
		return nil
	}
}

func recycleBinCmd(fs *pflag.FlagSet) action {
	kind := fs.String("kind", "", "only this kind")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		var items []lifecycledomain.DeletedItem
		if *kind != "" {
			k, err := lifecycledomain.ParseKind(*kind)
			if err != nil {
				return err
			}
			if items, err = s.Lifecycle.ListDeleted(ctx, k); err != nil {
				return err
			}
		} else {
			bin, err := s.Lifecycle.RecycleBin(ctx)
			if err != nil {
				return err
			}
			for _, group := range [][]lifecycledomain.DeletedItem{bin.Products, bin.Ingredients, bin.Sales, bin.Reports, bin.Receipts} {
				items = append(items, group...)
			}
		}

		tw := table(out)
		fmt.Fprintln(tw, "KIND\tID\tNAME\tDELETED")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Kind, item.ID, item.Name, item.DeletedAt.In(s.Config.Location()).Format("02/01/2006 15:04"))
		}
		return tw.Flush()
	}
}

func transitionCmd(act lifecycledomain.Action) func(fs *pflag.FlagSet) action {
	return func(fs *pflag.FlagSet) action {
		kind := fs.String("kind", "", "product, ingredient, sale, report or receipt")
		id := fs.String("id", "", "record id (the sale id for receipts)")
		return func(ctx context.Context, s app.Services, out io.Writer) error {
			k, err := lifecycledomain.ParseKind(*kind)
			if err != nil {
				return err
			}
			switch act {
			case lifecycledomain.ActionDeleted:
				err = s.Lifecycle.SoftDelete(ctx, k, *id)
			case lifecycledomain.ActionRestored:
				err = s.Lifecycle.Restore(ctx, k, *id)
			default:
				err = s.Lifecycle.Purge(ctx, k, *id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s %s\n", k, *id, act)
			return nil
		}
	}
}

func logsCmd(fs *pflag.FlagSet) action {
	kind := fs.String("kind", "", "filter by item type")
	act := fs.String("action", "", "deleted, restored or permanently_deleted")
	id := fs.String("id", "", "filter by item id")
	limit := fs.Int("limit", 50, "maximum entries, 0 for all")
	return func(ctx context.Context, s app.Services, out io.Writer) error {
		req := auditdomain.ListRequest{ItemID: *id, Limit: *limit}
		if *kind != "" {
			k, err := lifecycledomain.ParseKind(*kind)
			if err != nil {
				return err
			}
			req.ItemType = k
		}
		if *act != "" {
			a, err := auditdomain.ParseAction(*act)
			if err != nil {
				return err
			}
			req.Action = a
		}

		entries, err := s.Audit.List(ctx, req)
		if err != nil {
			return err
		}
		tw := table(out)
		fmt.Fprintln(tw, "WHEN\tACTION\tTYPE\tID\tNAME\tUSER")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.In(s.Config.Location()).Format("02/01/2006 15:04:05"), e.Action, e.ItemType, e.ItemID, e.ItemName, e.User)
		}
		return tw.Flush()
	}
}

// openOut returns stdout for "-", otherwise creates the file.
func openOut(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportSalesCmd(fs *pflag.FlagSet) action {
	rng := fs.String("range", "today", "today, 7d, 30d or all")
	format := fs.String("format", "csv", "csv or xlsx")
	outPath := fs.String("out", "", "output file, - for stdout (default relatorio-vendas-<range>.<format>)")
	return func(ctx context.Context, s app.Services, stdout io.Writer) error {
		sales, filter, err := listSales(ctx, s, *rng)
		if err != nil {
			return err
		}
		label := string(filter)
		if filter == saledomain.FilterAll {
			label = "todas"
		}
		path := *outPath
		if path == "" {
			path = export.FileName(*format, "relatorio", "vendas", label)
		}

		w, closeFn, err := openOut(path, stdout)
		if err != nil {
			return err
		}
		switch *format {
		case "csv":
			err = s.Exporter.WriteSalesCSV(w, sales)
		case "xlsx":
			err = s.Exporter.WriteSalesXLSX(w, sales)
		default:
			err = fmt.Errorf("unknown format %q", *format)
		}
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if path != "-" {
			fmt.Fprintf(stdout, "%d sales written to %s\n", len(sales), path)
		}
		return nil
	}
}

func exportInventoryCmd(fs *pflag.FlagSet) action {
	outPath := fs.String("out", "", "output file, - for stdout (default relatorio-inventario.csv)")
	return func(ctx context.Context, s app.Services, stdout io.Writer) error {
		reports, err := s.Reports.ListReports(ctx)
		if err != nil {
			return err
		}
		path := *outPath
		if path == "" {
			path = export.FileName("csv", "relatorio", "inventario")
		}
		w, closeFn, err := openOut(path, stdout)
		if err != nil {
			return err
		}
		err = s.Exporter.WriteInventoryCSV(w, reports)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if path != "-" {
			fmt.Fprintf(stdout, "%d reports written to %s\n", len(reports), path)
		}
		return nil
	}
}

func orderSlipCmd(fs *pflag.FlagSet) action {
	saleID := fs.String("sale", "", "sale id")
	outPath := fs.String("out", "", "output file (default nota-<order>.pdf)")
	return func(ctx context.Context, s app.Services, stdout io.Writer) error {
		sale, err := s.Sales.GetSale(ctx, *saleID)
		if err != nil {
			return err
		}
		doc, err := s.Exporter.OrderSlipPDF(ctx, sale)
		if err != nil {
			return err
		}
		path := *outPath
		if path == "" {
			path = export.FileName("pdf", "nota", sale.OrderNumber)
		}
		w, closeFn, err := openOut(path, stdout)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, doc)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if path != "-" {
			fmt.Fprintf(stdout, "order slip %s written to %s\n", sale.OrderNumber, path)
		}
		return nil
	}
}
