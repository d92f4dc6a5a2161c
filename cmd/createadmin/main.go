// cmd/createadmin/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/infrastructure/database/postgres"
	"github.com/charmaway/storefront/internal/pkg/auth"
	"github.com/charmaway/storefront/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "password; required for a new account, optional when promoting")
	name := flag.String("name", "Admin", "display name for a new account")
	flag.Parse()

	if *email == "" {
		log.Fatal("Usage: createadmin -email <email> [-password <password>] [-name <name>]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.NewConnection(cfg, logger.New(cfg.Logging))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	created, err := ensureAdmin(db.GetDB(), *email, *password, *name, cfg.Security.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	if created {
		log.Printf("Admin %s created", customer.NormalizeEmail(*email))
	} else {
		log.Printf("Customer %s promoted to admin", customer.NormalizeEmail(*email))
	}
}

// ensureAdmin creates the admin account, or promotes and reactivates an existing customer.
// A non-empty password replaces the stored one.
func ensureAdmin(db *gorm.DB, email, password, name string, cost int) (bool, error) {
	email = customer.NormalizeEmail(email)

	var hash string
	if password != "" {
		if err := auth.ValidatePassword(password); err != nil {
			return false, fmt.Errorf("password %w", err)
		}
		var err error
		if hash, err = auth.HashPassword(password, cost); err != nil {
			return false, err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return false, fmt.Errorf("hash verification failed: %w", err)
		}
	}

	var existing customer.Customer
	err := db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"is_admin": true, "is_active": true}
		if hash != "" {
			updates["password"] = hash
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return false, fmt.Errorf("failed to promote customer: %w", err)
		}
		return false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if hash == "" {
			return false, errors.New("password is required for a new account")
		}
		admin := customer.Customer{
			Email:    email,
			Password: hash,
			Name:     name,
			IsActive: true,
			IsAdmin:  true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return false, fmt.Errorf("failed to create admin: %w", err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("failed to look up customer: %w", err)
	}
}
