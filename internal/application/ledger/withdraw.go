package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// WithdrawInput entrada para un retiro (consumo) de material. Con AssignmentID
// se descuenta de esa asignación (y del reservado de su bodega); sin él se
// descuenta del disponible libre de (MaterialID, LocationID).
type WithdrawInput struct {
	AssignmentID string // opcional
	MaterialID   string // requerido si no hay asignación
	LocationID   string // requerido si no hay asignación
	Qty          decimal.Decimal
	ActorID      string
	Notes        string
}

// WithdrawResult resultado de un retiro.
type WithdrawResult struct {
	MovementID string
	Remaining  decimal.Decimal // saldo restante de la asignación o del disponible
}

// Withdraw registra la salida definitiva de material del inventario. El
// movimiento WITHDRAWAL guarda el origen de forma explícita (source_assignment_id)
// para que la reversión no tenga que adivinarlo.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*WithdrawResult, error) {
	if input.ActorID == "" || !input.Qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if input.AssignmentID == "" && (input.MaterialID == "" || input.LocationID == "") {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result WithdrawResult

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error {
		if input.AssignmentID != "" {
			return uc.withdrawFromAssignment(ctx, movRepo, stockRepo, asgRepo, input, now, &result)
		}
		return uc.withdrawFromAvailable(ctx, movRepo, stockRepo, input, now, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// withdrawFromAssignment descuenta de la asignación y del reservado de su bodega.
func (uc *LedgerUseCase) withdrawFromAssignment(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockLocationRepository,
	asgRepo repository.AssignmentRepository,
	input WithdrawInput,
	now time.Time,
	result *WithdrawResult,
) error {
	peek, err := asgRepo.GetByID(ctx, input.AssignmentID)
	if err != nil {
		return err
	}
	if peek == nil {
		return domain.ErrNotFound
	}
	// Orden global de bloqueo: StockLocation antes que Assignment
	loc, err := stockRepo.GetByIDForUpdate(ctx, peek.StockLocationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}
	asg, err := asgRepo.GetForUpdate(ctx, input.AssignmentID)
	if err != nil {
		return err
	}
	if asg == nil {
		return domain.ErrNotFound
	}
	if asg.Qty.LessThan(input.Qty) || loc.ReservedQty.LessThan(input.Qty) {
		return domain.ErrInsufficientStock
	}

	asg.Qty = asg.Qty.Sub(input.Qty)
	asg.UpdatedAt = now
	if err := asgRepo.Update(ctx, asg); err != nil {
		return err
	}
	loc.ReservedQty = loc.ReservedQty.Sub(input.Qty)
	loc.UpdatedAt = now
	if err := stockRepo.Update(ctx, loc); err != nil {
		return err
	}

	mov := &entity.Movement{
		ID:                 uuid.New().String(),
		Timestamp:          now,
		Kind:               entity.MovementKindWithdrawal,
		MaterialID:         loc.MaterialID,
		Qty:                input.Qty,
		LocationID:         loc.LocationID,
		OriginProjectID:    &asg.ProjectID,
		UnitValue:          asg.UnitValue,
		Currency:           asg.Currency,
		ActorID:            input.ActorID,
		Notes:              input.Notes,
		Status:             entity.MovementStatusActive,
		SourceAssignmentID: &asg.ID,
		CreatedAt:          now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return err
	}
	result.MovementID = mov.ID
	result.Remaining = asg.Qty
	return nil
}

// withdrawFromAvailable descuenta del disponible libre de la bodega.
func (uc *LedgerUseCase) withdrawFromAvailable(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockLocationRepository,
	input WithdrawInput,
	now time.Time,
	result *WithdrawResult,
) error {
	loc, err := stockRepo.GetForUpdate(ctx, input.MaterialID, input.LocationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}
	if loc.AvailableQty.LessThan(input.Qty) {
		return domain.ErrInsufficientStock
	}

	loc.AvailableQty = loc.AvailableQty.Sub(input.Qty)
	loc.UpdatedAt = now
	if err := stockRepo.Update(ctx, loc); err != nil {
		return err
	}

	currency := ""
	if loc.Currency != nil {
		currency = *loc.Currency
	}
	mov := &entity.Movement{
		ID:         uuid.New().String(),
		Timestamp:  now,
		Kind:       entity.MovementKindWithdrawal,
		MaterialID: loc.MaterialID,
		Qty:        input.Qty,
		LocationID: loc.LocationID,
		UnitValue:  loc.LastUnitCost,
		Currency:   currency,
		ActorID:    input.ActorID,
		Notes:      input.Notes,
		Status:     entity.MovementStatusActive,
		CreatedAt:  now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return err
	}
	result.MovementID = mov.ID
	result.Remaining = loc.AvailableQty
	return nil
}
