package invoicing

import (
	"github.com/smallbiznis/arledger/internal/invoicing/engine"
	"github.com/smallbiznis/arledger/internal/invoicing/repository"
	"github.com/smallbiznis/arledger/internal/invoicing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicing.service",
	fx.Provide(engine.New),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
