package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/validator"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Prices in minor units.
var seedProducts = []model.Product{
	{
		Name:        "Apple iPhone 16 Pro Max (256 GB) - Black Titanium",
		Description: "6.9 inch display, A18 Pro chip and a 48 MP triple camera in a light titanium body.",
		Price:       203999900,
		Stock:       15,
		Category:    "Electronics",
		ImageURL:    "https://images.fravega.com/f1000/0c061d21343235404877b19710175c91.jpg",
	},
	{
		Name:        `Samsung Galaxy Book 3 Pro 14" Core i7 32 GB 1 TB`,
		Description: "Ultra light notebook with a 3K Dynamic AMOLED 2X display.",
		Price:       264999900,
		Stock:       8,
		Category:    "Electronics",
		ImageURL:    "https://images.fravega.com/f300/07b56857e8c67e6f7d7ad452f169a8ae.jpg.webp",
	},
	{
		Name:        "JBL Tune 770NC Bluetooth Headphones Black",
		Description: "Foldable over-ear headphones with adaptive noise cancelling.",
		Price:       18284900,
		Stock:       25,
		Category:    "Electronics",
		ImageURL:    "https://images.fravega.com/f300/57a1e7980963228991d6de110f704ae1.jpg.webp",
	},
	{
		Name:        "Peabody Digital Espresso Machine PE-CED5000IX",
		Description: "Compact espresso machine with a minimalist steel finish.",
		Price:       15999900,
		Stock:       12,
		Category:    "Home",
		ImageURL:    "https://images.fravega.com/f300/5991ef166ec3b3a20f69b2b8f7dc7092.jpg.webp",
	},
	{
		Name:        "Philco RVCF25PI Robot Vacuum with Mop",
		Description: "Vacuums and mops in one pass, HEPA filter included.",
		Price:       22999900,
		Stock:       7,
		Category:    "Home",
		ImageURL:    "https://images.fravega.com/f300/4ee295ed26af6372907764483613938e.jpg.webp",
	},
	{
		Name:        "SLP 10 Pro Mountain Bike 29 T18",
		Description: "All terrain.",
		Price:       28999900,
		Stock:       5,
		Category:    "Sports",
		ImageURL:    "https://images.fravega.com/f300/4f4d19b5f5c69f15ed484548c6c8a1f3.jpg.webp",
	},
	{
		Name:        "Patria Trek Hiking Boot Black 44",
		Description: "Waterproof breathable lining and a rubber outsole for wet and rocky trails.",
		Price:       12578000,
		Stock:       30,
		Category:    "Sports",
		ImageURL:    "https://images.fravega.com/f300/087645f25073c6cb2bc4d468685ce41d.jpg.webp",
	},
	{
		Name:        "Samsung Galaxy Fit 3 Dark Gray",
		Description: "18.5 g aluminium fitness band, 5ATM and IP68 rated.",
		Price:       11499900,
		Stock:       18,
		Category:    "Electronics",
		ImageURL:    "https://images.fravega.com/f300/2d4093bb735d33e3fe8be3540f215eaa.jpg.webp",
	},
	{
		Name:        "Gadnic Running Hydration Backpack",
		Description: "Built-in water bladder and an adjustable ergonomic fit.",
		Price:       6499900,
		Stock:       20,
		Category:    "Sports",
		ImageURL:    "https://images.fravega.com/f300/5d4123361f7ddc44bde4cc2035a8e477.jpg.webp",
	},
	{
		Name:        "Trexa GBFW261 20 kg Dumbbell and Bar Kit",
		Description: "Threaded bars with plates for home training.",
		Price:       4999900,
		Stock:       15,
		Category:    "Sports",
	},
}

// Seed loads the demo catalog when the products table is empty and makes
// sure the admin account exists. Running it twice is harmless.
func Seed(ctx context.Context, gdb *gorm.DB, opts SeedOptions, log zerolog.Logger) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Count(&count).Error; err != nil {
			return fmt.Errorf("seed: count products: %w", err)
		}
		if count == 0 {
			products := make([]model.Product, len(seedProducts))
			copy(products, seedProducts)
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed: create products: %w", err)
			}
			log.Info().Int("count", len(products)).Msg("seeded products")
		} else {
			log.Info().Int64("existing", count).Msg("products already present, skipping catalog")
		}

		if strings.TrimSpace(opts.AdminEmail) == "" {
			return nil
		}
		email, err := validator.Email(opts.AdminEmail)
		if err != nil {
			return fmt.Errorf("seed: admin email: %w", err)
		}
		if opts.AdminPassword == "" {
			return errors.New("seed: admin password is required with an admin email")
		}
		if err := validator.Password(opts.AdminPassword); err != nil {
			return fmt.Errorf("seed: admin password: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed: hash admin password: %w", err)
		}
		admin := model.User{Email: email, PasswordHash: string(hash), Role: model.RoleAdmin}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin)
		if res.Error != nil {
			return fmt.Errorf("seed: create admin: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			log.Info().Str("email", email).Msg("admin already exists")
			return nil
		}
		log.Info().Str("email", email).Msg("seeded admin user")
		return nil
	})
}
