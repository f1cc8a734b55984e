package db

import (
	"fmt"
	"log"

	"blogicum/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured store and migrates the schema.
// driver is "postgres" or "sqlite".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// One connection: every in-memory connection is its own database and
		// the foreign key pragma is per connection.
		sqlDB.SetMaxOpenConns(1)
		if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// Seed creates the initial categories and locations on an empty database.
func Seed(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return nil
	}

	categories := []models.Category{
		{Title: "Путешествия", Slug: "travel", Description: "Истории о поездках и маршрутах"},
		{Title: "Новости", Slug: "news", Description: "Что происходит вокруг"},
		{Title: "Не в этот раз", Slug: "not-now", Description: "Скрытая категория"},
	}
	categories[0].IsPublished = true
	categories[1].IsPublished = true

	locations := []models.Location{
		{Name: "Остров отчаянья"},
		{Name: "Планета Земля"},
	}
	for i := range locations {
		locations[i].IsPublished = true
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		if err := tx.Create(&locations).Error; err != nil {
			return fmt.Errorf("seed locations: %w", err)
		}
		log.Println("Initial categories and locations created")
		return nil
	})
}
