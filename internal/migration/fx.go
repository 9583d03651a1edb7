package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// golang-migrate's postgres driver cannot run against sqlite, which
		// local smoke runs use.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&paymentdomain.RunRecord{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
