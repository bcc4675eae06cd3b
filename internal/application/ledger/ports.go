package ledger

import (
	"context"

	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: si fn devuelve error o el
// contexto se cancela, toda la operación se revierte y ningún saldo queda a medias.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error) error
}
