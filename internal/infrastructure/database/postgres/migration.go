// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/disposal"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"github.com/your-org/feedmill-backend/internal/domain/production"
	"github.com/your-org/feedmill-backend/internal/domain/sales"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order: catalogs first, then workflows, then the
	// ledger that references both sides.
	models := []interface{}{
		&material.Material{},
		&product.Product{},

		&formula.Formula{},
		&formula.FormulaDetail{},

		&production.ProductionRun{},
		&batch.ProductBatch{},
		&sales.Sale{},
		&disposal.Disposal{},

		&ledger.StockMovement{},
		&audit.ActivityLog{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Ledger indexes: the planner scans by material and time window,
		// reports by product batch and source.
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_material_created ON stock_movements(material_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_batch_created ON stock_movements(product_batch_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_source_created ON stock_movements(source, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_direction_created ON stock_movements(direction, created_at DESC)",

		// Batch indexes: FIFO consumption walks open batches per product,
		// the disposal worklist scans by expiry.
		"CREATE INDEX IF NOT EXISTS idx_product_batches_product_remaining ON product_batches(product_id, remaining)",
		"CREATE INDEX IF NOT EXISTS idx_product_batches_expiry ON product_batches(expiry_date)",

		// Workflow indexes
		"CREATE INDEX IF NOT EXISTS idx_production_runs_status_created ON production_runs(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_product_date ON sales(product_id, sale_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_disposals_reason_disposed ON disposals(reason, disposed_at DESC)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_materials_category ON materials(category)",
		"CREATE INDEX IF NOT EXISTS idx_materials_supplier ON materials(supplier)",
		"CREATE INDEX IF NOT EXISTS idx_formulas_product_active ON formulas(product_id, is_active)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts a small development dataset: a few materials, two
// products and an active formula per product.
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedMaterials(); err != nil {
		return fmt.Errorf("failed to seed materials: %w", err)
	}
	if err := m.seedProductsAndFormulas(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedMaterials() error {
	log.Println("🌾 Seeding materials...")

	materials := []material.Material{
		{
			Category:     material.CategoryFeed,
			Name:         "Yellow Corn",
			Unit:         "kg",
			Stock:        decimal.NewFromInt(5000),
			MinStock:     decimal.NewFromInt(1000),
			LeadTimeDays: 5,
			SafetyStock:  decimal.NewFromInt(500),
			UnitPrice:    decimal.NewFromFloat(0.45),
			Supplier:     "AgriGrain Co",
		},
		{
			Category:     material.CategoryFeed,
			Name:         "Soybean Meal",
			Unit:         "kg",
			Stock:        decimal.NewFromInt(3000),
			MinStock:     decimal.NewFromInt(800),
			LeadTimeDays: 7,
			SafetyStock:  decimal.NewFromInt(400),
			UnitPrice:    decimal.NewFromFloat(0.85),
			Supplier:     "AgriGrain Co",
		},
		{
			Category:     material.CategoryFeed,
			Name:         "Fish Meal",
			Unit:         "kg",
			Stock:        decimal.NewFromInt(1200),
			MinStock:     decimal.NewFromInt(300),
			LeadTimeDays: 10,
			SafetyStock:  decimal.NewFromInt(150),
			UnitPrice:    decimal.NewFromFloat(1.60),
			Supplier:     "Coastal Proteins",
		},
		{
			Category:     material.CategoryVitamin,
			Name:         "Vitamin Premix",
			Unit:         "kg",
			Stock:        decimal.NewFromInt(200),
			MinStock:     decimal.NewFromInt(50),
			LeadTimeDays: 14,
			SafetyStock:  decimal.NewFromInt(25),
			UnitPrice:    decimal.NewFromFloat(6.50),
			Supplier:     "NutriChem",
		},
		{
			Category:     material.CategoryMineral,
			Name:         "Limestone Powder",
			Unit:         "kg",
			Stock:        decimal.NewFromInt(800),
			MinStock:     decimal.NewFromInt(200),
			LeadTimeDays: 4,
			SafetyStock:  decimal.NewFromInt(100),
			UnitPrice:    decimal.NewFromFloat(0.12),
			Supplier:     "MineralWorks",
		},
	}

	for _, mat := range materials {
		var existing material.Material
		result := m.db.Where("name = ?", mat.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&mat).Error; err != nil {
				return err
			}
			log.Printf("✅ Created material: %s", mat.Name)
		} else {
			log.Printf("⏭️ Material already exists: %s", mat.Name)
		}
	}

	return nil
}

func (m *Migration) seedProductsAndFormulas() error {
	log.Println("🏭 Seeding products and formulas...")

	var count int64
	m.db.Model(&product.Product{}).Count(&count)
	if count > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	products := []struct {
		product product.Product
		// formula lines as material name → qty per kg of output
		lines map[string]decimal.Decimal
	}{
		{
			product: product.Product{
				Category:  product.CategoryFeed,
				Name:      "Broiler Starter Feed",
				Unit:      "kg",
				SellPrice: decimal.NewFromFloat(1.20),
			},
			lines: map[string]decimal.Decimal{
				"Yellow Corn":      decimal.NewFromFloat(0.55),
				"Soybean Meal":     decimal.NewFromFloat(0.30),
				"Fish Meal":        decimal.NewFromFloat(0.10),
				"Vitamin Premix":   decimal.NewFromFloat(0.02),
				"Limestone Powder": decimal.NewFromFloat(0.03),
			},
		},
		{
			product: product.Product{
				Category:  product.CategoryFeed,
				Name:      "Layer Grower Feed",
				Unit:      "kg",
				SellPrice: decimal.NewFromFloat(0.95),
			},
			lines: map[string]decimal.Decimal{
				"Yellow Corn":      decimal.NewFromFloat(0.60),
				"Soybean Meal":     decimal.NewFromFloat(0.25),
				"Vitamin Premix":   decimal.NewFromFloat(0.02),
				"Limestone Powder": decimal.NewFromFloat(0.13),
			},
		},
	}

	for _, p := range products {
		prod := p.product
		if err := m.db.Create(&prod).Error; err != nil {
			return err
		}
		log.Printf("✅ Created product: %s", prod.Name)

		f := formula.Formula{
			ProductID: prod.ID,
			Name:      prod.Name + " v1",
			IsActive:  true,
		}
		if err := m.db.Create(&f).Error; err != nil {
			return err
		}

		for name, qty := range p.lines {
			var mat material.Material
			if err := m.db.Where("name = ?", name).First(&mat).Error; err != nil {
				log.Printf("⚠️ Formula line skipped, material not found: %s", name)
				continue
			}
			detail := formula.FormulaDetail{
				FormulaID:  f.ID,
				MaterialID: mat.ID,
				Qty:        qty,
			}
			if err := m.db.Create(&detail).Error; err != nil {
				return err
			}
		}
		log.Printf("✅ Created formula: %s", f.Name)
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"activity_logs",
		"stock_movements",
		"disposals",
		"sales",
		"product_batches",
		"production_runs",
		"formula_details",
		"formulas",
		"products",
		"materials",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
