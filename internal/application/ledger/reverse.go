package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// ReverseInput entrada para revertir un movimiento del kardex.
type ReverseInput struct {
	MovementID   string
	Reason       string
	ActorID      string
	IsPrivileged bool
}

// ReverseResult ids del movimiento original (ya anulado) y de su reversión.
type ReverseResult struct {
	OriginalID string
	ReversalID string
}

// Reverse aplica el inverso de un movimiento y anula el original, sin borrar
// historia jamás. Máquina de estados de un solo sentido: ACTIVE → VOIDED.
// Un movimiento se revierte a lo sumo una vez y una reversión no se revierte.
// Todo ocurre en una transacción: si cualquier paso falla, el original queda
// intacto y ACTIVE.
func (uc *LedgerUseCase) Reverse(ctx context.Context, input ReverseInput) (*ReverseResult, error) {
	if !input.IsPrivileged {
		return nil, domain.ErrForbidden
	}
	if input.MovementID == "" || input.Reason == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result ReverseResult

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error {
		orig, err := movRepo.GetForUpdate(ctx, input.MovementID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if !orig.IsActive() {
			return domain.ErrAlreadyVoided
		}
		if orig.IsReversal() {
			return domain.ErrCannotReverseReversal
		}
		reversed, err := movRepo.HasActiveReversal(ctx, orig.ID)
		if err != nil {
			return err
		}
		if reversed {
			return domain.ErrAlreadyReversed
		}
		// Las dos patas pareadas de una reserva comparten source_assignment_id:
		// revertir una sola dejaría la asignación viva y sumaría existencia de
		// la nada. Una reserva se deshace retirando o trasladando la asignación.
		// Solo el retiro conserva esa referencia y sigue siendo reversible.
		if orig.Kind != entity.MovementKindWithdrawal && orig.SourceAssignmentID != nil {
			return domain.ErrNotReversible
		}

		rev := &entity.Movement{
			ID:                 uuid.New().String(),
			Timestamp:          now,
			MaterialID:         orig.MaterialID,
			Qty:                orig.Qty,
			LocationID:         orig.LocationID,
			OriginProjectID:    orig.OriginProjectID,
			DestProjectID:      orig.DestProjectID,
			UnitValue:          orig.UnitValue,
			Currency:           orig.Currency,
			ActorID:            input.ActorID,
			Notes:              "Reversión: " + input.Reason,
			Status:             entity.MovementStatusActive,
			ReversesMovementID: &orig.ID,
			CreatedAt:          now,
		}

		switch orig.Kind {
		case entity.MovementKindPositiveAdjustment:
			if err := uc.reversePositive(ctx, stockRepo, orig, now); err != nil {
				return err
			}
			rev.Kind = entity.MovementKindNegativeAdjustment

		case entity.MovementKindNegativeAdjustment:
			if err := uc.reverseNegative(ctx, stockRepo, orig, now); err != nil {
				return err
			}
			rev.Kind = entity.MovementKindPositiveAdjustment

		case entity.MovementKindWithdrawal:
			if err := uc.reverseWithdrawal(ctx, stockRepo, asgRepo, orig, now); err != nil {
				return err
			}
			rev.Kind = entity.MovementKindPositiveAdjustment
			rev.SourceAssignmentID = orig.SourceAssignmentID

		default:
			return domain.ErrNotReversible
		}

		if err := movRepo.Create(ctx, rev); err != nil {
			return err
		}
		if err := movRepo.Void(ctx, orig.ID, input.ActorID, input.Reason, now); err != nil {
			return err
		}
		result = ReverseResult{OriginalID: orig.ID, ReversalID: rev.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// reversePositive deshace una entrada: el material debe seguir disponible.
// No se puede des-recibir stock que ya se consumió.
func (uc *LedgerUseCase) reversePositive(
	ctx context.Context,
	stockRepo repository.StockLocationRepository,
	orig *entity.Movement,
	now time.Time,
) error {
	loc, err := stockRepo.GetForUpdate(ctx, orig.MaterialID, orig.LocationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}
	if loc.AvailableQty.LessThan(orig.Qty) {
		return domain.ErrInsufficientStock
	}
	loc.AvailableQty = loc.AvailableQty.Sub(orig.Qty)
	loc.UpdatedAt = now
	return stockRepo.Update(ctx, loc)
}

// reverseNegative devuelve la cantidad al disponible, incondicionalmente.
func (uc *LedgerUseCase) reverseNegative(
	ctx context.Context,
	stockRepo repository.StockLocationRepository,
	orig *entity.Movement,
	now time.Time,
) error {
	loc, err := stockRepo.GetOrCreateForUpdate(ctx, orig.MaterialID, orig.LocationID)
	if err != nil {
		return err
	}
	loc.AvailableQty = loc.AvailableQty.Add(orig.Qty)
	if loc.Currency == nil {
		// Fila recreada en cero: recupera el precio en libros del movimiento original
		currency := orig.Currency
		loc.Currency = &currency
		loc.LastUnitCost = orig.UnitValue
	}
	loc.UpdatedAt = now
	return stockRepo.Update(ctx, loc)
}

// reverseWithdrawal devuelve un retiro a su origen: a la asignación (y al
// reservado de su bodega) si salió de una, o al disponible libre si no.
func (uc *LedgerUseCase) reverseWithdrawal(
	ctx context.Context,
	stockRepo repository.StockLocationRepository,
	asgRepo repository.AssignmentRepository,
	orig *entity.Movement,
	now time.Time,
) error {
	if orig.SourceAssignmentID == nil || *orig.SourceAssignmentID == "" {
		loc, err := stockRepo.GetOrCreateForUpdate(ctx, orig.MaterialID, orig.LocationID)
		if err != nil {
			return err
		}
		loc.AvailableQty = loc.AvailableQty.Add(orig.Qty)
		if loc.Currency == nil {
			currency := orig.Currency
			loc.Currency = &currency
			loc.LastUnitCost = orig.UnitValue
		}
		loc.UpdatedAt = now
		return stockRepo.Update(ctx, loc)
	}

	peek, err := asgRepo.GetByID(ctx, *orig.SourceAssignmentID)
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
	asg, err := asgRepo.GetForUpdate(ctx, *orig.SourceAssignmentID)
	if err != nil {
		return err
	}
	if asg == nil {
		return domain.ErrNotFound
	}

	asg.Qty = asg.Qty.Add(orig.Qty)
	asg.UpdatedAt = now
	if err := asgRepo.Update(ctx, asg); err != nil {
		return err
	}
	loc.ReservedQty = loc.ReservedQty.Add(orig.Qty)
	loc.UpdatedAt = now
	return stockRepo.Update(ctx, loc)
}
