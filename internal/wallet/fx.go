package wallet

import (
	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(service.NewService),
)
