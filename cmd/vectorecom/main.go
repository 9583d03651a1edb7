package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/cart"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/locks"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/logger"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/migration"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/observability"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/ratelimit"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/scheduler"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/server"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/store"
	"github.com/Tijo-11/Vector-Ecom-sub001/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		store.Module,
		locks.Module,
		ratelimit.Module,

		orderapi.Module,
		cart.Module,
		payment.Module,

		migration.Module,
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
