// Package seed loads demo users, accounts and payees from a YAML file so a
// fresh development server starts with data to poke at.
package seed

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/models"
)

// File is the YAML seed file layout
type File struct {
	Users []User `yaml:"users"`
}

// User describes one seeded user and their account
type User struct {
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Email    string   `yaml:"email"`
	Roles    []string `yaml:"roles"`
	Balance  int64    `yaml:"balance"` // cents
	Payees   []Payee  `yaml:"payees"`
}

// Payee describes one seeded bill-payment recipient
type Payee struct {
	Name          string `yaml:"name"`
	AccountNumber string `yaml:"account_number"`
}

// Apply loads the seed file and creates any users that don't exist yet.
// Existing users are left untouched, so seeding is idempotent.
func Apply(db *gorm.DB, path string, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, su := range file.Users {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", su.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check for user %s: %w", su.Username, err)
		}
		if count > 0 {
			continue
		}

		hash, err := auth.HashPassword(su.Password)
		if err != nil {
			return err
		}

		roles := su.Roles
		if len(roles) == 0 {
			roles = []string{models.RoleUser}
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			user := &models.User{
				Username:     su.Username,
				PasswordHash: hash,
				Email:        su.Email,
				Roles:        strings.Join(roles, ","),
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}

			if _, err := models.NewAccount(tx, user.ID, su.Balance); err != nil {
				return err
			}

			for _, sp := range su.Payees {
				payee := &models.Payee{
					UserID:        user.ID,
					Name:          sp.Name,
					AccountNumber: sp.AccountNumber,
				}
				if err := tx.Create(payee).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.Username, err)
		}
		created++
	}

	log.Info().Int("created", created).Int("total", len(file.Users)).Msg("Seed file applied")
	return nil
}
