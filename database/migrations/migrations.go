// Package migrations holds the shop schema. Each migration registers
// itself from init(); importing the package is enough to make them
// available to the runner.
package migrations

import (
	"gorm.io/gorm"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/pkg/migration"
)

func init() {
	migration.Register("20250601000000_create_users_table", table{&models.User{}})
	migration.Register("20250601000001_create_products_table", table{&models.Product{}})
	migration.Register("20250601000002_create_orders_table", table{&models.Order{}})
	migration.Register("20250601000003_create_payments_table", table{&models.Payment{}})
}

// table creates or drops the table behind one model.
type table struct {
	model interface{}
}

func (t table) Up(db *gorm.DB) error {
	return db.AutoMigrate(t.model)
}

func (t table) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(t.model)
}
