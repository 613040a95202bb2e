package providers

import (
	"github.com/smallbiznis/arledger/internal/config"
	"github.com/smallbiznis/arledger/internal/providers/assets"
	"github.com/smallbiznis/arledger/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers",
	fx.Provide(pdf.New),
	fx.Provide(func(cfg config.Config, log *zap.Logger) *assets.Resolver {
		return assets.NewResolver(cfg.LogoPath, log)
	}),
)
