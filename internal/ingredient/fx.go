package ingredient

import (
	"github.com/smallbiznis/snackbar/internal/ingredient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingredient.service",
	fx.Provide(service.New),
)
