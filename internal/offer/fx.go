package offer

import (
	"github.com/flatwatch/flatwatch/internal/offer/repository"
	"github.com/flatwatch/flatwatch/internal/offer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("offer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
