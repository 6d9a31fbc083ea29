package history

import (
	"github.com/flatwatch/flatwatch/internal/history/repository"
	"github.com/flatwatch/flatwatch/internal/history/service"
	"go.uber.org/fx"
)

var Module = fx.Module("history.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
