package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/flatwatch/flatwatch/internal/archive"
	"github.com/flatwatch/flatwatch/internal/background"
	"github.com/flatwatch/flatwatch/internal/clock"
	"github.com/flatwatch/flatwatch/internal/config"
	"github.com/flatwatch/flatwatch/internal/history"
	"github.com/flatwatch/flatwatch/internal/ingest"
	"github.com/flatwatch/flatwatch/internal/logger"
	"github.com/flatwatch/flatwatch/internal/migration"
	"github.com/flatwatch/flatwatch/internal/notifier"
	"github.com/flatwatch/flatwatch/internal/offer"
	"github.com/flatwatch/flatwatch/internal/providers/email"
	"github.com/flatwatch/flatwatch/internal/scheduler"
	"github.com/flatwatch/flatwatch/internal/server"
	"github.com/flatwatch/flatwatch/internal/subscriber"
	"github.com/flatwatch/flatwatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		background.Module,
		email.Module,

		// Functional domains
		offer.Module,
		subscriber.Module,
		notifier.Module,
		archive.Module,
		ingest.Module,
		history.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
