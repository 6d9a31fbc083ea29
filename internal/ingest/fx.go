package ingest

import (
	"github.com/flatwatch/flatwatch/internal/ingest/repository"
	"github.com/flatwatch/flatwatch/internal/ingest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
