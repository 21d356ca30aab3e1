// Package app assembles the register's fx modules.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/snackbar/internal/audit"
	auditdomain "github.com/smallbiznis/snackbar/internal/audit/domain"
	"github.com/smallbiznis/snackbar/internal/clock"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/smallbiznis/snackbar/internal/export"
	"github.com/smallbiznis/snackbar/internal/idgen"
	"github.com/smallbiznis/snackbar/internal/ingredient"
	ingredientdomain "github.com/smallbiznis/snackbar/internal/ingredient/domain"
	"github.com/smallbiznis/snackbar/internal/lifecycle"
	lifecycledomain "github.com/smallbiznis/snackbar/internal/lifecycle/domain"
	"github.com/smallbiznis/snackbar/internal/logger"
	"github.com/smallbiznis/snackbar/internal/observability"
	"github.com/smallbiznis/snackbar/internal/product"
	productdomain "github.com/smallbiznis/snackbar/internal/product/domain"
	"github.com/smallbiznis/snackbar/internal/receipt"
	receiptdomain "github.com/smallbiznis/snackbar/internal/receipt/domain"
	"github.com/smallbiznis/snackbar/internal/sale"
	saledomain "github.com/smallbiznis/snackbar/internal/sale/domain"
	"github.com/smallbiznis/snackbar/internal/seed"
	"github.com/smallbiznis/snackbar/internal/stock"
	"github.com/smallbiznis/snackbar/internal/store"
	"github.com/smallbiznis/snackbar/internal/usagereport"
	usagereportdomain "github.com/smallbiznis/snackbar/internal/usagereport/domain"
	"github.com/smallbiznis/snackbar/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Infrastructure is everything below the domain services. Tests swap parts
// of it with fx.Replace or fx.Decorate.
var Infrastructure = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	telemetry.Module,
	clock.Module,
	idgen.Module,
	store.Module,
	stock.Module,
	seed.Module,
)

var Domains = fx.Options(
	product.Module,
	ingredient.Module,
	sale.Module,
	usagereport.Module,
	receipt.Module,
	audit.Module,
	lifecycle.Module,
	export.Module,
)

var Module = fx.Options(Infrastructure, Domains)

// Services is the set of handles a front end needs.
type Services struct {
	fx.In

	Log         *zap.Logger
	Config      config.Config
	Store       *store.Store
	Registry    *prometheus.Registry
	Products    productdomain.Service
	Ingredients ingredientdomain.Service
	Sales       saledomain.Service
	Reports     usagereportdomain.Service
	Receipts    receiptdomain.Service
	Audit       auditdomain.Service
	Lifecycle   lifecycledomain.Service
	Exporter    *export.Exporter
}
