package ledger

import (
	"context"

	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// KardexPage una página del historial de movimientos más el total sin paginar.
type KardexPage struct {
	Total int
	Rows  []*entity.Movement
}

// QueryKardex consulta el historial de movimientos (kardex) con filtros y
// paginación. Solo lectura: no toma bloqueos y lee datos confirmados.
func (uc *LedgerUseCase) QueryKardex(ctx context.Context, filter repository.KardexFilter, limit, offset int) (*KardexPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := uc.movRepo.Search(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return &KardexPage{Total: total, Rows: rows}, nil
}
