package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/clock"
	"github.com/smallbiznis/arledger/internal/logger"
	"github.com/smallbiznis/arledger/internal/migration"
	"github.com/smallbiznis/arledger/internal/scheduler"
	"github.com/smallbiznis/arledger/internal/server"
	"github.com/smallbiznis/arledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
