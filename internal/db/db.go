package db

import (
	"log"
	"os"

	"blogicum/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=blogicum port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedTaxonomies()
}

// Migrate keeps the schema in sync. Shared with the test setup.
func Migrate(g *gorm.DB) error {
	return g.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	)
}

// seedTaxonomies creates a starter set of categories and locations on first
// boot. Their management is admin-side, so an empty install would otherwise
// have nothing to attach posts to.
func seedTaxonomies() {
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Title: "Travel", Slug: "travel", IsPublished: true, Description: "Trips, routes and places worth writing home about"},
		{Title: "Food", Slug: "food", IsPublished: true, Description: "Recipes, restaurants and everything edible"},
		{Title: "Tech", Slug: "tech", IsPublished: true, Description: "Software, hardware and the people who break both"},
		{Title: "Daily life", Slug: "daily", IsPublished: true, Description: "Everything that does not fit anywhere else"},
	}
	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Slug, err)
		}
	}

	locations := []models.Location{
		{Name: "Home", IsPublished: true},
		{Name: "Abroad", IsPublished: true},
		{Name: "On the road", IsPublished: true},
	}
	for _, location := range locations {
		if err := DB.Create(&location).Error; err != nil {
			log.Printf("Failed to create location %s: %v", location.Name, err)
		}
	}
	log.Println("Initial categories and locations created")
}
