package archive

import (
	"github.com/smallbiznis/arledger/internal/archive/service"
	"go.uber.org/fx"
)

var Module = fx.Module("archive",
	fx.Provide(service.New),
)
