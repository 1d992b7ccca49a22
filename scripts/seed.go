//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database"
	"github.com/Mahdisellami/Hrisa-MyWebsite/internal/database/models"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/config"
	"github.com/Mahdisellami/Hrisa-MyWebsite/pkg/util"
)

// Default protections for the portfolio: CV details and client projects
// require sign-in, everything else stays public.
var defaultProtections = []models.ProtectedResource{
	{ResourceType: models.ResourcePage, ResourceID: "cv", MinRole: models.RoleEditor},
	{ResourceType: models.ResourceSection, ResourceID: "cv/experience", MinRole: models.RoleEditor},
	{ResourceType: models.ResourceProject, ResourceID: "projects/client-work", MinRole: models.RoleEditor},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()

	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	name := os.Getenv("ADMIN_NAME")
	if email == "" {
		email = "admin@example.com"
	}
	if name == "" {
		name = "Admin"
	}

	if err := seedAdmin(ctx, db, email, name); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	if err := seedProtections(ctx, db); err != nil {
		log.Fatalf("failed to seed protections: %v", err)
	}
}

// seedAdmin creates the admin account, or promotes an existing account with
// that email. Safe to run repeatedly.
func seedAdmin(ctx context.Context, db *gorm.DB, email, name string) error {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		user = models.User{
			Email:      email,
			Name:       name,
			Role:       models.RoleAdmin,
			Status:     models.StatusApproved,
			ApprovedAt: &now,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}
		fmt.Printf("Admin user created: %s\n", email)
		return nil
	}
	if err != nil {
		return err
	}

	if user.Role == models.RoleAdmin && user.Status == models.StatusApproved {
		fmt.Printf("Admin user already exists: %s\n", email)
		return nil
	}

	now := time.Now()
	err = db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"role":        models.RoleAdmin,
		"status":      models.StatusApproved,
		"approved_at": now,
	}).Error
	if err != nil {
		return err
	}
	fmt.Printf("Existing user promoted to admin: %s\n", email)
	return nil
}

// seedProtections inserts the default rules, skipping any pair that already
// has one so manual changes survive reseeding.
func seedProtections(ctx context.Context, db *gorm.DB) error {
	for _, rule := range defaultProtections {
		var existing models.ProtectedResource
		err := db.WithContext(ctx).
			Where("resource_type = ? AND resource_id = ?", rule.ResourceType, rule.ResourceID).
			First(&existing).Error

		if err == nil {
			fmt.Printf("Protection already present: %s %s\n", rule.ResourceType, rule.ResourceID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := db.WithContext(ctx).Create(&rule).Error; err != nil {
			return err
		}
		fmt.Printf("Protection created: %s %s -> %s\n", rule.ResourceType, rule.ResourceID, rule.MinRole)
	}
	return nil
}
