package repository

import (
	"context"

	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
)

// StockLocationRepository define el puerto para el inventario actual por
// (material, bodega). Los métodos *ForUpdate bloquean la fila (SELECT FOR UPDATE)
// y deben llamarse dentro de una transacción.
type StockLocationRepository interface {
	// Get devuelve la fila del par sin bloquear; nil si no existe. Lectura de
	// localización previa a tomar bloqueos en orden de id.
	Get(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error)
	// GetForUpdate bloquea y devuelve la fila del par; nil si no existe.
	GetForUpdate(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error)
	// GetByIDForUpdate bloquea y devuelve la fila por id; nil si no existe.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.StockLocation, error)
	// GetOrCreateForUpdate bloquea la fila del par, creándola en cero si no existe.
	// La creación es explícita: nunca un efecto colateral de una consulta.
	GetOrCreateForUpdate(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error)
	// ListForUpdateByMaterial bloquea todas las filas del material con disponible > 0,
	// en orden ascendente de id (orden total de bloqueo anti-deadlock).
	ListForUpdateByMaterial(ctx context.Context, materialID string) ([]*entity.StockLocation, error)
	// Update persiste saldos y costo/moneda de una fila ya bloqueada.
	Update(ctx context.Context, loc *entity.StockLocation) error
	// ResolveDefaultLocation devuelve, sin bloquear, la bodega por defecto para un
	// ajuste del material: la de mayor saldo total, con desempate por id. Devuelve
	// "" si el material no tiene filas de inventario.
	ResolveDefaultLocation(ctx context.Context, materialID string) (string, error)
}
