package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

// StockLocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockLocationRepo struct {
	q Querier
}

// NewStockLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLocationRepository(q Querier) *StockLocationRepo {
	return &StockLocationRepo{q: q}
}

const stockLocationColumns = `id, material_id, location_id, available_qty, reserved_qty, last_unit_cost, currency, created_at, updated_at`

func scanStockLocation(row pgx.Row) (*entity.StockLocation, error) {
	var s entity.StockLocation
	err := row.Scan(
		&s.ID, &s.MaterialID, &s.LocationID, &s.AvailableQty, &s.ReservedQty,
		&s.LastUnitCost, &s.Currency, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get devuelve la fila del par (material, bodega) sin bloquear; nil si no existe.
func (r *StockLocationRepo) Get(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	query := `
		SELECT ` + stockLocationColumns + `
		FROM stock_locations WHERE material_id = $1 AND location_id = $2`
	s, err := scanStockLocation(r.q.QueryRow(ctx, query, materialID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location: %w", err)
	}
	return s, nil
}

// GetForUpdate bloquea y devuelve la fila del par (material, bodega); nil si no existe.
func (r *StockLocationRepo) GetForUpdate(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	query := `
		SELECT ` + stockLocationColumns + `
		FROM stock_locations WHERE material_id = $1 AND location_id = $2
		FOR UPDATE`
	s, err := scanStockLocation(r.q.QueryRow(ctx, query, materialID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location for update: %w", err)
	}
	return s, nil
}

// GetByIDForUpdate bloquea y devuelve la fila por id; nil si no existe.
func (r *StockLocationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.StockLocation, error) {
	query := `
		SELECT ` + stockLocationColumns + `
		FROM stock_locations WHERE id = $1
		FOR UPDATE`
	s, err := scanStockLocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location by id for update: %w", err)
	}
	return s, nil
}

// GetOrCreateForUpdate bloquea la fila del par, creándola en cero si no existe.
// El INSERT ... ON CONFLICT DO NOTHING hace la creación idempotente ante
// carreras; el SELECT FOR UPDATE posterior siempre encuentra y bloquea la fila.
func (r *StockLocationRepo) GetOrCreateForUpdate(ctx context.Context, materialID, locationID string) (*entity.StockLocation, error) {
	insert := `
		INSERT INTO stock_locations (id, material_id, location_id, available_qty, reserved_qty, last_unit_cost, currency, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, NULL, now(), now())
		ON CONFLICT (material_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), materialID, locationID); err != nil {
		return nil, fmt.Errorf("create stock location: %w", err)
	}
	loc, err := r.GetForUpdate(ctx, materialID, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("get or create stock location: fila ausente tras insert")
	}
	return loc, nil
}

// ListForUpdateByMaterial bloquea todas las filas del material con disponible > 0,
// en orden ascendente de id (orden total de bloqueo anti-deadlock).
func (r *StockLocationRepo) ListForUpdateByMaterial(ctx context.Context, materialID string) ([]*entity.StockLocation, error) {
	query := `
		SELECT ` + stockLocationColumns + `
		FROM stock_locations WHERE material_id = $1 AND available_qty > 0
		ORDER BY id ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list stock locations for update: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLocation
	for rows.Next() {
		var s entity.StockLocation
		if err := rows.Scan(&s.ID, &s.MaterialID, &s.LocationID, &s.AvailableQty, &s.ReservedQty,
			&s.LastUnitCost, &s.Currency, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock location: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Update persiste saldos y costo/moneda de una fila ya bloqueada.
func (r *StockLocationRepo) Update(ctx context.Context, loc *entity.StockLocation) error {
	query := `
		UPDATE stock_locations
		SET available_qty = $2, reserved_qty = $3, last_unit_cost = $4, currency = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		loc.ID, loc.AvailableQty, loc.ReservedQty, loc.LastUnitCost, loc.Currency, loc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update stock location: fila %s no encontrada", loc.ID)
	}
	return nil
}

// ResolveDefaultLocation devuelve, sin bloquear, la bodega con mayor saldo total
// del material (desempate por id ascendente); "" si el material no tiene filas.
func (r *StockLocationRepo) ResolveDefaultLocation(ctx context.Context, materialID string) (string, error) {
	query := `
		SELECT location_id
		FROM stock_locations WHERE material_id = $1
		ORDER BY (available_qty + reserved_qty) DESC, id ASC
		LIMIT 1`
	var locationID string
	err := r.q.QueryRow(ctx, query, materialID).Scan(&locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("resolve default location: %w", err)
	}
	return locationID, nil
}
