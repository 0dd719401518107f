package main

import (
	"database/sql"
	"log/slog"

	"github.com/sweetlayer/cakeshop/backend/internal/config"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/repository"
)

// storeSet bundles the concrete stores behind the service interfaces. The
// product catalog is always the seeded in-memory repository; orders and
// coupons switch between memory and MySQL on the STORAGE driver.
type storeSet struct {
	products *repository.InMemoryProductRepository
	orders   orders.OrderRepository
	coupons  orders.CouponRepository
	db       *sql.DB
}

func (s *storeSet) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func buildStores(cfg *config.Config, log *slog.Logger) (*storeSet, error) {
	stores := &storeSet{
		products: repository.NewInMemoryProductRepository(),
	}

	switch cfg.Storage.Driver {
	case "mysql":
		db, err := repository.OpenMySQL(cfg.Storage.DSN())
		if err != nil {
			return nil, err
		}
		stores.db = db
		stores.orders = repository.NewMySQLOrderStore(db)
		stores.coupons = repository.NewMySQLCouponStore(db)
		log.Info("using mysql storage", "host", cfg.Storage.DBHost, "database", cfg.Storage.DBName)
	default:
		stores.orders = repository.NewInMemoryOrderStore()
		stores.coupons = repository.NewInMemoryCouponStore()
		log.Info("using in-memory storage")
	}

	return stores, nil
}
