package usagereport

import (
	"github.com/smallbiznis/snackbar/internal/usagereport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usagereport.service",
	fx.Provide(service.New),
)
