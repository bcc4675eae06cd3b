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

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo implementación sobre PostgreSQL (usable con pool o tx).
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

const assignmentColumns = `id, stock_location_id, project_id, site_id, qty, unit_value, currency, assigned_at, updated_at`

// Create persiste una nueva asignación.
func (r *AssignmentRepo) Create(ctx context.Context, asg *entity.Assignment) error {
	if asg.ID == "" {
		asg.ID = uuid.New().String()
	}
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		asg.ID, asg.StockLocationID, asg.ProjectID, asg.SiteID,
		asg.Qty, asg.UnitValue, asg.Currency, asg.AssignedAt, asg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// GetByID obtiene una asignación sin bloquear; nil si no existe.
func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments WHERE id = $1`
	return r.scanOne(ctx, query, id, "get assignment")
}

// GetForUpdate bloquea y devuelve la asignación; nil si no existe.
func (r *AssignmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments WHERE id = $1
		FOR UPDATE`
	return r.scanOne(ctx, query, id, "get assignment for update")
}

// Update persiste cantidad y destino de una asignación ya bloqueada.
func (r *AssignmentRepo) Update(ctx context.Context, asg *entity.Assignment) error {
	query := `
		UPDATE assignments
		SET project_id = $2, site_id = $3, qty = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, asg.ID, asg.ProjectID, asg.SiteID, asg.Qty, asg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update assignment: fila %s no encontrada", asg.ID)
	}
	return nil
}

func (r *AssignmentRepo) scanOne(ctx context.Context, query, id, op string) (*entity.Assignment, error) {
	var a entity.Assignment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.StockLocationID, &a.ProjectID, &a.SiteID,
		&a.Qty, &a.UnitValue, &a.Currency, &a.AssignedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}
