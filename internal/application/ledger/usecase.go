package ledger

import (
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// LedgerUseCase orquesta las operaciones del ledger de inventario: reservar,
// trasladar asignación, retirar, ajustar y revertir, más la consulta del kardex.
// Toda mutación corre en una transacción con bloqueo pesimista de filas
// (SELECT FOR UPDATE) en orden ascendente de id; no hay estado compartido en
// memoria entre peticiones.
type LedgerUseCase struct {
	txRunner TxRunner
	whRepo   repository.WarehouseRepository
	// movRepo atado al pool: solo lecturas de kardex, sin bloqueos.
	movRepo repository.MovementRepository
	// stockRepo atado al pool: solo resolución de ubicación por defecto.
	stockRepo repository.StockLocationRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	whRepo repository.WarehouseRepository,
	movRepo repository.MovementRepository,
	stockRepo repository.StockLocationRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		whRepo:    whRepo,
		movRepo:   movRepo,
		stockRepo: stockRepo,
	}
}
