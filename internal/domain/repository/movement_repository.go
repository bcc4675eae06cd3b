package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
)

// KardexFilter filtros de consulta del kardex. Los punteros en nil no filtran.
type KardexFilter struct {
	MaterialID    *string
	ProjectID     *string // coincide con proyecto origen o destino
	LocationID    *string
	Kind          *string
	DateFrom      *time.Time
	DateTo        *time.Time
	IncludeVoided bool
}

// MovementRepository define el puerto de persistencia del kardex. Create es
// solo-anexar; la única mutación posterior permitida es Void (anotación de
// anulación, nunca borrado).
type MovementRepository interface {
	Create(ctx context.Context, mov *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate bloquea y devuelve el movimiento; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	// HasActiveReversal indica si ya existe un movimiento ACTIVE que revierte a id.
	HasActiveReversal(ctx context.Context, id string) (bool, error)
	// Void marca el movimiento como VOIDED con actor, motivo y fecha.
	Void(ctx context.Context, id, voidedBy, reason string, at time.Time) error
	// Search devuelve una página del kardex (sin bloqueos) y el total de filas.
	Search(ctx context.Context, filter KardexFilter, limit, offset int) ([]*entity.Movement, int, error)
}
