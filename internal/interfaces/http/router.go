package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-erp/internal/application/ledger"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *ledger.LedgerUseCase
	WhRepo    repository.WarehouseRepository
	JWTSecret string
}

// Router registra las rutas de la API del ledger. Todas protegidas: la identidad
// y el rol llegan resueltos en el Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	ledgerGroup := api.Group("/ledger")
	handler := NewLedgerHandler(deps.LedgerUC)

	ledgerGroup.Post("/reserve", handler.Reserve)
	ledgerGroup.Post("/withdraw", handler.Withdraw)
	ledgerGroup.Post("/adjust", handler.Adjust)
	ledgerGroup.Post("/assignments/:id/transfer", handler.TransferAssignment)
	ledgerGroup.Post("/movements/:id/reverse", handler.Reverse)
	ledgerGroup.Get("/kardex", handler.Kardex)

	whHandler := NewWarehouseHandler(deps.WhRepo)
	warehouses := api.Group("/warehouses")
	warehouses.Get("/", whHandler.List)
	warehouses.Get("/:id", whHandler.Get)
}
