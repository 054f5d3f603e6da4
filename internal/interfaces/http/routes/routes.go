// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/feedmill-backend/internal/config"
	"github.com/your-org/feedmill-backend/internal/domain/audit"
	"github.com/your-org/feedmill-backend/internal/domain/batch"
	"github.com/your-org/feedmill-backend/internal/domain/disposal"
	"github.com/your-org/feedmill-backend/internal/domain/formula"
	"github.com/your-org/feedmill-backend/internal/domain/ledger"
	"github.com/your-org/feedmill-backend/internal/domain/material"
	"github.com/your-org/feedmill-backend/internal/domain/planning"
	"github.com/your-org/feedmill-backend/internal/domain/product"
	"github.com/your-org/feedmill-backend/internal/domain/production"
	"github.com/your-org/feedmill-backend/internal/domain/sales"
	"github.com/your-org/feedmill-backend/internal/interfaces/http/handlers"
	"github.com/your-org/feedmill-backend/internal/pkg/alert"
	"github.com/your-org/feedmill-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// SetupRoutes wires the service graph and mounts every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	log := logger.New(cfg.Logging)

	// Domain services. The ledger sits underneath everything; workflows
	// compose the Tx variants of the services below it.
	ledgerSvc := ledger.NewService(db)
	materialSvc := material.NewService(db, ledgerSvc)
	productSvc := product.NewService(db)
	formulaSvc := formula.NewService(db)
	batchSvc := batch.NewService(db, ledgerSvc)
	productionSvc := production.NewService(db, materialSvc, formulaSvc, batchSvc, log)
	salesSvc := sales.NewService(db, batchSvc, log)
	disposalSvc := disposal.NewService(db, batchSvc, formulaSvc, log)
	auditSvc := audit.NewService(db, log)

	planningSvc := planning.NewService(materialSvc, ledgerSvc, log).WithCache(redisClient)
	if cfg.Alerts.Enabled {
		planningSvc = planningSvc.WithNotifier(alert.NewMailer(cfg.Alerts))
	}

	materialHandler := handlers.NewMaterialHandler(materialSvc, ledgerSvc, planningSvc, auditSvc)
	productHandler := handlers.NewProductHandler(productSvc, batchSvc, formulaSvc, ledgerSvc, auditSvc)
	stockHandler := handlers.NewStockHandler(ledgerSvc)
	planningHandler := handlers.NewPlanningHandler(planningSvc)
	productionHandler := handlers.NewProductionHandler(productionSvc, auditSvc)
	salesHandler := handlers.NewSalesHandler(salesSvc, auditSvc)
	disposalHandler := handlers.NewDisposalHandler(disposalSvc, auditSvc)
	activityHandler := handlers.NewActivityHandler(auditSvc)

	materials := rg.Group("/materials")
	{
		materials.POST("", materialHandler.CreateMaterial)
		materials.GET("", materialHandler.GetMaterials)
		materials.GET("/:id", materialHandler.GetMaterial)
		materials.DELETE("/:id", materialHandler.DeleteMaterial)
		materials.POST("/:id/increase", materialHandler.IncreaseStock)
		materials.POST("/:id/decrease", materialHandler.DecreaseStock)
		materials.GET("/:id/movements", materialHandler.GetMaterialMovements)
		materials.GET("/:id/rop", materialHandler.GetMaterialROP)
	}

	products := rg.Group("/products")
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/stock", productHandler.GetProductStock)
		products.GET("/:id/batches", productHandler.GetProductBatches)
		products.POST("/:id/consume", productHandler.ConsumeStock)
		products.GET("/:id/movements", productHandler.GetProductMovements)
		products.GET("/:id/formula", productHandler.GetActiveFormula)
	}

	movements := rg.Group("/movements")
	{
		movements.GET("", stockHandler.GetMovements)
		movements.GET("/today", stockHandler.GetTodayMovements)
		movements.GET("/summary", stockHandler.GetMovementSummary)
	}

	planningGroup := rg.Group("/planning")
	{
		planningGroup.GET("/materials/:id/rop", planningHandler.GetROPDetails)
		planningGroup.GET("/materials/:id/safety-stock", planningHandler.GetSafetyStockRecommendation)
		planningGroup.GET("/alerts", planningHandler.GetReorderAlerts)
		planningGroup.GET("/alerts/summary", planningHandler.GetAlertSummary)
		planningGroup.GET("/alerts/by-supplier", planningHandler.GetAlertsBySupplier)
	}

	productionGroup := rg.Group("/production")
	{
		productionGroup.POST("", productionHandler.ExecuteProduction)
		productionGroup.POST("/check", productionHandler.CheckMaterials)
		productionGroup.GET("", productionHandler.GetProductionRuns)
		productionGroup.GET("/:id", productionHandler.GetProductionRun)
		productionGroup.POST("/:id/cancel", productionHandler.CancelProduction)
	}

	salesGroup := rg.Group("/sales")
	{
		salesGroup.POST("", salesHandler.CreateSale)
		salesGroup.GET("", salesHandler.GetSales)
		salesGroup.GET("/summary", salesHandler.GetSalesSummary)
		salesGroup.GET("/:id", salesHandler.GetSale)
	}

	disposals := rg.Group("/disposals")
	{
		disposals.POST("", disposalHandler.CreateDisposal)
		disposals.GET("", disposalHandler.GetDisposals)
		disposals.GET("/summary", disposalHandler.GetDisposalSummary)
		disposals.GET("/expired-batches", disposalHandler.GetExpiredBatches)
		disposals.GET("/:id", disposalHandler.GetDisposal)
	}

	activity := rg.Group("/activity")
	{
		activity.GET("", activityHandler.GetRecentActivity)
		activity.GET("/:type/:id", activityHandler.GetEntityActivity)
	}
}
