package lifecycle

import (
	"github.com/smallbiznis/snackbar/internal/lifecycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lifecycle.service",
	fx.Provide(service.New),
)
