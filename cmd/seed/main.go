package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"shop-lab/auth"
	"shop-lab/domain"
	"shop-lab/repositories"
	"shop-lab/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

type seedConfig struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	AdminEmail     string `env:"SEED_ADMIN_EMAIL,default=admin@shop-lab.dev"`
	AdminPassword  string `env:"SEED_ADMIN_PASSWORD,default=ChangeMe!123"`
}

// Catalog fixtures for local development. Prices are fixed-point so the
// seeded data exercises the same money path as production writes.
var fixtures = []services.CreateProductRequest{
	{Name: "Mechanical Keyboard", Description: "Hot-swappable 75% board, brown switches", Price: decimal.RequireFromString("89.90"), Stock: 25},
	{Name: "Laser Mouse", Description: "Wired, 8 programmable buttons", Price: decimal.RequireFromString("34.50"), Stock: 40},
	{Name: "4K Monitor", Description: "27 inch IPS, 144Hz", Price: decimal.RequireFromString("399.00"), Stock: 12},
	{Name: "USB-C Dock", Description: "Dual HDMI, 100W passthrough", Price: decimal.RequireFromString("129.99"), Stock: 18},
	{Name: "Webcam", Description: "1080p with privacy shutter", Price: decimal.RequireFromString("59.00"), Stock: 30},
	{Name: "Desk Mat", Description: "900x400mm stitched edges", Price: decimal.RequireFromString("19.90"), Stock: 100},
	{Name: "Headset", Description: "Closed-back with detachable mic", Price: decimal.RequireFromString("149.00"), Stock: 15},
	{Name: "Laptop Stand", Description: "Aluminium, adjustable height", Price: decimal.RequireFromString("45.00"), Stock: 5},
}

func main() {
	// 1. Load config (.env supported for local runs)
	_ = godotenv.Load()
	var config seedConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open the stores the engine itself uses
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		log.Fatalf("Failed to open catalog index: %v", err)
	}
	defer blugeWriter.Close()

	userRepository := repositories.NewUserRepository(db)
	productRepository := repositories.NewProductRepository(db)
	productIndex := repositories.NewProductIndex(blugeWriter)
	productService := services.NewProductService(productRepository, productIndex, logger)

	ctx := context.Background()

	// 3. Admin account, idempotent across runs
	if err := seedAdmin(ctx, userRepository, config); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. Catalog fixtures
	products := seedCatalog(ctx, productService)

	color.Green.Println("\n✅ Seed complete")
	render(products)
	fmt.Printf("\nAdmin account: %s\n", config.AdminEmail)
}

func seedAdmin(ctx context.Context, users repositories.IUserRepository, config seedConfig) error {
	hashedPassword, err := auth.HashPassword(config.AdminPassword)
	if err != nil {
		return err
	}

	adminID, err := users.Create(ctx, config.AdminEmail, "Shop Admin", hashedPassword)
	if err != nil {
		// Already seeded: reuse the existing account
		existing, lookupErr := users.GetByEmail(ctx, config.AdminEmail)
		if lookupErr != nil {
			return err
		}
		adminID = existing.ID
	}
	return users.GrantRole(ctx, adminID, domain.RoleAdmin)
}

func seedCatalog(ctx context.Context, products services.IProductService) []domain.Product {
	var seeded []domain.Product
	for _, fixture := range fixtures {
		product, err := products.Create(ctx, fixture)
		if err != nil {
			color.Yellow.Printf("⚠️  Skipping %q: %v\n", fixture.Name, err)
			continue
		}
		seeded = append(seeded, product)
	}
	return seeded
}

func render(products []domain.Product) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Price", "Stock"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, p := range products {
		table.Append([]string{p.ID.String(), p.Name, p.Price.StringFixed(2), fmt.Sprintf("%d", p.Stock)})
	}
	table.Render()
}
