package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla inventory_movements es solo-anexar: nunca se hace UPDATE salvo la
// anotación de anulación, y nunca DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, ts, kind, material_id, qty, location_id, origin_project_id, dest_project_id,
		unit_value, currency, actor_id, notes, status, voided_at, voided_by, void_reason,
		reverses_movement_id, source_assignment_id, created_at`

// Create persiste un movimiento. Valida en el borde qty > 0 y tipo no vacío;
// la validación de negocio ocurre aguas arriba. Un 23505 sobre el índice
// parcial de reversiones significa que otro caller ganó la carrera por
// revertir el mismo movimiento.
func (r *MovementRepo) Create(ctx context.Context, mov *entity.Movement) error {
	if !mov.Qty.IsPositive() || mov.Kind == "" {
		return domain.ErrInvalidInput
	}
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		mov.ID, mov.Timestamp, mov.Kind, mov.MaterialID, mov.Qty, mov.LocationID,
		mov.OriginProjectID, mov.DestProjectID, mov.UnitValue, mov.Currency,
		mov.ActorID, mov.Notes, mov.Status, mov.VoidedAt, mov.VoidedBy, mov.VoidReason,
		mov.ReversesMovementID, mov.SourceAssignmentID, mov.CreatedAt,
	)
	if err != nil {
		if mov.ReversesMovementID != nil && isUniqueViolation(err) {
			return domain.ErrAlreadyReversed
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento sin bloquear; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements WHERE id = $1`
	return r.scanOne(ctx, query, id, "get movement")
}

// GetForUpdate bloquea y devuelve el movimiento; nil si no existe.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements WHERE id = $1
		FOR UPDATE`
	return r.scanOne(ctx, query, id, "get movement for update")
}

// HasActiveReversal indica si ya existe un movimiento ACTIVE que revierte a id.
func (r *MovementRepo) HasActiveReversal(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM inventory_movements
			WHERE reverses_movement_id = $1 AND status = $2
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, id, entity.MovementStatusActive).Scan(&exists); err != nil {
		return false, fmt.Errorf("has active reversal: %w", err)
	}
	return exists, nil
}

// Void marca el movimiento como VOIDED con actor, motivo y fecha. Única
// mutación permitida sobre una fila ya escrita.
func (r *MovementRepo) Void(ctx context.Context, id, voidedBy, reason string, at time.Time) error {
	query := `
		UPDATE inventory_movements
		SET status = $2, voided_at = $3, voided_by = $4, void_reason = $5
		WHERE id = $1 AND status = $6`
	cmd, err := r.q.Exec(ctx, query,
		id, entity.MovementStatusVoided, at, voidedBy, reason, entity.MovementStatusActive,
	)
	if err != nil {
		return fmt.Errorf("void movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyVoided
	}
	return nil
}

// Search devuelve una página del kardex más el total de filas que cumplen el
// filtro. Solo lectura: sin bloqueos, datos confirmados.
func (r *MovementRepo) Search(ctx context.Context, filter repository.KardexFilter, limit, offset int) ([]*entity.Movement, int, error) {
	where := ` WHERE 1=1`
	var args []any
	pos := 1

	if !filter.IncludeVoided {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, entity.MovementStatusActive)
		pos++
	}
	if filter.MaterialID != nil {
		where += fmt.Sprintf(" AND material_id = $%d", pos)
		args = append(args, *filter.MaterialID)
		pos++
	}
	if filter.ProjectID != nil {
		where += fmt.Sprintf(" AND (origin_project_id = $%d OR dest_project_id = $%d)", pos, pos)
		args = append(args, *filter.ProjectID)
		pos++
	}
	if filter.LocationID != nil {
		where += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, *filter.LocationID)
		pos++
	}
	if filter.Kind != nil {
		where += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, *filter.Kind)
		pos++
	}
	if filter.DateFrom != nil {
		where += fmt.Sprintf(" AND ts >= $%d", pos)
		args = append(args, *filter.DateFrom)
		pos++
	}
	if filter.DateTo != nil {
		where += fmt.Sprintf(" AND ts <= $%d", pos)
		args = append(args, *filter.DateTo)
		pos++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM inventory_movements` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements` + where +
		fmt.Sprintf(" ORDER BY ts DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.Timestamp, &m.Kind, &m.MaterialID, &m.Qty, &m.LocationID,
			&m.OriginProjectID, &m.DestProjectID, &m.UnitValue, &m.Currency,
			&m.ActorID, &m.Notes, &m.Status, &m.VoidedAt, &m.VoidedBy, &m.VoidReason,
			&m.ReversesMovementID, &m.SourceAssignmentID, &m.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

func (r *MovementRepo) scanOne(ctx context.Context, query, id, op string) (*entity.Movement, error) {
	var m entity.Movement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Timestamp, &m.Kind, &m.MaterialID, &m.Qty, &m.LocationID,
		&m.OriginProjectID, &m.DestProjectID, &m.UnitValue, &m.Currency,
		&m.ActorID, &m.Notes, &m.Status, &m.VoidedAt, &m.VoidedBy, &m.VoidReason,
		&m.ReversesMovementID, &m.SourceAssignmentID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}
