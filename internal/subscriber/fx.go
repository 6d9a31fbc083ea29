package subscriber

import (
	"github.com/flatwatch/flatwatch/internal/subscriber/repository"
	"github.com/flatwatch/flatwatch/internal/subscriber/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscriber.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
