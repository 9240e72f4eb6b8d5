package main

import (
	"log"

	"github.com/shopspring/decimal"

	"seedworks/internal/config"
	"seedworks/internal/database"
	"seedworks/internal/models"
)

type seed struct {
	name     string
	category models.ProductCategory
	level    int
	price    int64
	daily    int64
	days     int
	max      int
}

var catalogue = []seed{
	{"Seed Plan 1", models.ProductCategoryStable, 1, 390, 65, 60, 0},
	{"Seed Plan 2", models.ProductCategoryStable, 2, 1200, 210, 60, 0},
	{"Seed Plan 3", models.ProductCategoryStable, 3, 3500, 630, 60, 0},
	{"Seed Plan 4", models.ProductCategoryStable, 4, 9000, 1700, 60, 0},
	{"Seed Plan 5", models.ProductCategoryStable, 5, 25000, 4900, 60, 0},
	{"Seed Plan 6", models.ProductCategoryStable, 6, 60000, 12500, 60, 0},
	{"Welfare Sprout 1", models.ProductCategoryWelfare, 1, 300, 100, 5, 1},
	{"Welfare Sprout 3", models.ProductCategoryWelfare, 3, 2000, 700, 5, 1},
	{"Harvest Festival", models.ProductCategoryActivity, 0, 600, 180, 7, 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), cfg.Database.LogLevel); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.GetDB()

	created := 0
	for _, s := range catalogue {
		product := models.Product{
			Name:         s.name,
			Category:     s.category,
			VIPLevel:     s.level,
			Price:        decimal.NewFromInt(s.price),
			DailyEarning: decimal.NewFromInt(s.daily),
			RevenueDays:  s.days,
			MaxQuantity:  s.max,
			IsActive:     true,
		}

		// Names are the seed identity; existing rows are left untouched
		res := db.Where(models.Product{Name: s.name}).FirstOrCreate(&product)
		if res.Error != nil {
			log.Fatalf("Failed to seed %s: %v", s.name, res.Error)
		}
		if res.RowsAffected > 0 {
			created++
			log.Printf("Seeded %s (id %d)", product.Name, product.ID)
		}
	}

	log.Printf("Product seeding finished: %d created, %d already present", created, len(catalogue)-created)
}
