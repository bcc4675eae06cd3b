package repository

import (
	"context"

	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
)

// AssignmentRepository define el puerto para las asignaciones de stock a
// proyecto/obra. Las asignaciones nunca se borran: se drenan hasta cero.
type AssignmentRepository interface {
	Create(ctx context.Context, asg *entity.Assignment) error
	// GetByID lee sin bloquear; se usa para resolver la StockLocation dueña antes
	// de tomar bloqueos en el orden global (ubicación primero, asignación después).
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	// GetForUpdate bloquea y devuelve la asignación; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error)
	Update(ctx context.Context, asg *entity.Assignment) error
}
