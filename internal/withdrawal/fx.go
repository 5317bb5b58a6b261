package withdrawal

import (
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("withdrawal",
	fx.Provide(service.NewService),
)
