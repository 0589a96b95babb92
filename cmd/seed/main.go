package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"techmart/internal/config"
	"techmart/internal/db"
	"techmart/internal/model"
	"techmart/internal/repository"
)

var categoryNames = []string{
	"Smart Watches",
	"Zero Earbuds",
	"Headphones",
	"11 11 Sale",
	"Vision 2025",
}

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Category{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	created, err := seedCategories(ctx, repository.NewCategoryRepository(gormDB))
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	log.Printf("Categories seeded: %d created, %d already present", created, len(categoryNames)-created)

	if err := seedAdmin(ctx, repository.NewUserRepository(gormDB), cfg); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	log.Println("Seed completed successfully!")
}

// seedCategories creates the default categories, skipping any that already
// exist under a case-insensitive name match.
func seedCategories(ctx context.Context, repo repository.CategoryRepository) (int, error) {
	created := 0
	for _, name := range categoryNames {
		_, err := repo.FindByNameInsensitive(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("error checking category %q: %w", name, err)
		}
		if err := repo.Create(ctx, &model.Category{Name: name}); err != nil {
			return created, fmt.Errorf("error creating category %q: %w", name, err)
		}
		created++
	}
	return created, nil
}

// seedAdmin creates a verified admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. It is a no-op when the account exists or no password is set.
func seedAdmin(ctx context.Context, repo repository.UserRepository, cfg *config.Config) error {
	if cfg.AdminPass == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	_, err := repo.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		log.Printf("Admin user %s already exists", cfg.AdminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := &model.User{
		Name:         "Admin",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsVerified:   true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("error creating admin user: %w", err)
	}
	log.Printf("Admin user %s created", cfg.AdminEmail)
	return nil
}
