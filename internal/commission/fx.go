package commission

import (
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(service.NewService),
)
