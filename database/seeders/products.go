package seeders

import (
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/ruizhu/shopapi/app/models"
)

func init() {
	Register("products", seedProducts)
}

var demoProducts = []models.Product{
	{Name: "Pu'er Tea Cake", Description: lo.ToPtr("357g aged raw pu'er"), Price: 168, Category: lo.ToPtr("tea"), Stock: 50},
	{Name: "Dianhong Black Tea", Description: lo.ToPtr("Yunnan golden tips, 100g tin"), Price: 88, Category: lo.ToPtr("tea"), Stock: 120},
	{Name: "Celadon Gaiwan", Description: lo.ToPtr("150ml porcelain lidded bowl"), Price: 59.9, Category: lo.ToPtr("teaware"), Stock: 30},
	{Name: "Bamboo Tea Tray", Price: 129, Category: lo.ToPtr("teaware"), Stock: 15},
}

// seedProducts inserts the demo catalogue once; products whose name
// already exists are skipped.
func seedProducts(db *gorm.DB) error {
	for _, p := range demoProducts {
		p := p
		var n int64
		if err := db.Model(&models.Product{}).Where("name = ?", p.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
