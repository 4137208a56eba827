package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		companyName := "Acme Co"
		var companyID int64
		row := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row()
		if err := row.Scan(&companyID); err != nil {
			if err := db.Exec("INSERT INTO companies (name, currency, created_at, updated_at) VALUES (?, 'USD', now(), now())", companyName).Error; err != nil {
				log.Fatalf("failed to insert company %s: %v", companyName, err)
			}
			if err := db.Raw("SELECT id FROM companies WHERE name = ?", companyName).Row().Scan(&companyID); err != nil {
				log.Fatalf("failed to look up seeded company %s: %v", companyName, err)
			}
			fmt.Println("Seeded company:", companyName)
		}

		adminEmail := "padil@mail.com"
		var adminID int64
		row = db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&adminID); err != nil {
			if err := db.Exec("INSERT INTO users (company_id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'admin', true, now(), now())",
				companyID, adminEmail, "Padil Admin", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&adminID); err != nil {
				log.Fatalf("failed to look up seeded admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		managerEmail := "manager@mail.com"
		var managerID int64
		row = db.Raw("SELECT id FROM users WHERE email = ?", managerEmail).Row()
		if err := row.Scan(&managerID); err != nil {
			if err := db.Exec("INSERT INTO users (company_id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'manager', true, now(), now())",
				companyID, managerEmail, "Maya Manager", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert manager user: %v", err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", managerEmail).Row().Scan(&managerID); err != nil {
				log.Fatalf("failed to look up seeded manager user: %v", err)
			}
			fmt.Println("Seeded manager user:", managerEmail)
		}

		fadhilEmail := "fadhil@mail.com"
		row = db.Raw("SELECT id FROM users WHERE email = ?", fadhilEmail).Row()
		var fadhilID int64
		if err := row.Scan(&fadhilID); err != nil {
			if err := db.Exec("INSERT INTO users (company_id, email, name, password_hash, role, manager_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'employee', ?, true, now(), now())",
				companyID, fadhilEmail, "Fadhil", string(hash), managerID).Error; err != nil {
				log.Fatalf("failed to insert fadhil user: %v", err)
			}
			fmt.Println("Seeded employee user:", fadhilEmail)
		}

		if err := db.Exec("INSERT INTO approver_configs (company_id, user_id, role_name, sequence, active, created_at, updated_at) VALUES (?, ?, 'manager', 1, true, now(), now())",
			companyID, managerID).Error; err != nil {
			fmt.Println("approver config already present or failed to seed:", err)
		}

		categories := []struct {
			Name string
			Desc string
		}{
			{"travel", "business travel and transportation"},
			{"meals", "meals and entertainment"},
			{"office", "office supplies and equipment"},
			{"other", "miscellaneous expenses"},
		}

		for _, c := range categories {
			var exists int
			row := db.Raw("SELECT 1 FROM expense_categories WHERE company_id = ? AND name = ?", companyID, c.Name).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO expense_categories (company_id, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
					companyID, c.Name, c.Desc).Error; err != nil {
					log.Fatalf("failed to insert expense category %s: %v", c.Name, err)
				}
				fmt.Printf("Seeded expense category: %s\n", c.Name)
			}
		}

		fmt.Println("Seed complete.")
	},
}
