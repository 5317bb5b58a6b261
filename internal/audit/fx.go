package audit

import (
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
