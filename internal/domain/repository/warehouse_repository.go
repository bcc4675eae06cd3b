package repository

import (
	"context"

	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
)

// WarehouseRepository define el puerto de consulta del catálogo de bodegas.
// El CRUD completo vive en otro servicio; el ledger solo necesita leerlas.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// FirstRegistered devuelve la bodega registrada primero (created_at, id
	// ascendente): la ubicación por defecto cuando el material no tiene inventario.
	FirstRegistered(ctx context.Context) (*entity.Warehouse, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
}
