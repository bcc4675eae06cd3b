package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// TransferAssignmentInput entrada para re-destinar una asignación a otro
// proyecto/obra sin mover material físicamente.
type TransferAssignmentInput struct {
	AssignmentID string
	NewProjectID string
	NewSiteID    string
	ActorID      string
}

// TransferAssignment cambia el proyecto/obra destino de una asignación existente
// y deja constancia con un movimiento TRANSFER (origen y destino en la misma
// fila). Los saldos de la bodega no cambian: el material sigue reservado, solo
// cambia a quién está prometido.
func (uc *LedgerUseCase) TransferAssignment(ctx context.Context, input TransferAssignmentInput) error {
	if input.AssignmentID == "" || input.NewProjectID == "" || input.NewSiteID == "" || input.ActorID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error {
		// Lectura sin bloqueo para conocer la StockLocation dueña, luego bloqueos
		// en el orden global: ubicación primero, asignación después.
		peek, err := asgRepo.GetByID(ctx, input.AssignmentID)
		if err != nil {
			return err
		}
		if peek == nil {
			return domain.ErrNotFound
		}
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
		if !asg.Qty.GreaterThan(decimal.Zero) {
			// Asignación ya drenada: nada que trasladar
			return domain.ErrInvalidInput
		}

		oldProject := asg.ProjectID
		asg.ProjectID = input.NewProjectID
		asg.SiteID = input.NewSiteID
		asg.UpdatedAt = now
		if err := asgRepo.Update(ctx, asg); err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:                 uuid.New().String(),
			Timestamp:          now,
			Kind:               entity.MovementKindTransfer,
			MaterialID:         loc.MaterialID,
			Qty:                asg.Qty,
			LocationID:         loc.LocationID,
			OriginProjectID:    &oldProject,
			DestProjectID:      &input.NewProjectID,
			UnitValue:          asg.UnitValue,
			Currency:           asg.Currency,
			ActorID:            input.ActorID,
			Notes:              fmt.Sprintf("Traslado de asignación a proyecto %s / obra %s", input.NewProjectID, input.NewSiteID),
			Status:             entity.MovementStatusActive,
			SourceAssignmentID: &asg.ID,
			CreatedAt:          now,
		}
		return movRepo.Create(ctx, mov)
	})
}
