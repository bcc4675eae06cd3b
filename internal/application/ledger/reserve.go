package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// ReserveInput entrada para reservar material a un proyecto/obra.
type ReserveInput struct {
	MaterialID string
	Qty        decimal.Decimal
	ProjectID  string
	SiteID     string
	ActorID    string
}

// AllocationLine una línea de la reserva: cuánto se tomó de qué bodega y a qué
// asignación quedó ligado.
type AllocationLine struct {
	LocationID   string
	AssignmentID string
	Qty          decimal.Decimal
	UnitCost     decimal.Decimal
	Currency     string
}

// Reserve satisface la cantidad pedida tomando de una o varias bodegas del
// material: bloquea todas las filas con disponible > 0 (orden ascendente de id),
// las recorre de mayor a menor saldo y descuenta greedy hasta completar. Por cada
// bodega tocada: disponible baja, reservado sube, se crea una asignación al
// proyecto y se escriben dos movimientos pareados (salida en bodega, entrada al
// proyecto destino), al estilo de partida doble. Si el disponible total no
// alcanza, la transacción completa falla sin tocar ninguna fila.
func (uc *LedgerUseCase) Reserve(ctx context.Context, input ReserveInput) ([]AllocationLine, error) {
	if input.MaterialID == "" || input.ProjectID == "" || input.SiteID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.Qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var lines []AllocationLine

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error {
		// Bloquea todas las filas candidatas en orden ascendente de id
		locs, err := stockRepo.ListForUpdateByMaterial(ctx, input.MaterialID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, loc := range locs {
			total = total.Add(loc.AvailableQty)
		}
		if total.LessThan(input.Qty) {
			return domain.ErrInsufficientStock
		}

		// Asigna de mayor a menor saldo disponible: menos líneas parciales y el
		// remanente queda consolidado. Desempate por id para que sea determinista.
		sort.SliceStable(locs, func(i, j int) bool {
			if !locs[i].AvailableQty.Equal(locs[j].AvailableQty) {
				return locs[i].AvailableQty.GreaterThan(locs[j].AvailableQty)
			}
			return locs[i].ID < locs[j].ID
		})

		remaining := input.Qty
		for _, loc := range locs {
			if !remaining.GreaterThan(decimal.Zero) {
				break
			}
			take := decimal.Min(remaining, loc.AvailableQty)
			remaining = remaining.Sub(take)

			loc.AvailableQty = loc.AvailableQty.Sub(take)
			loc.ReservedQty = loc.ReservedQty.Add(take)
			loc.UpdatedAt = now
			if err := stockRepo.Update(ctx, loc); err != nil {
				return err
			}

			currency := ""
			if loc.Currency != nil {
				currency = *loc.Currency
			}
			asg := &entity.Assignment{
				ID:              uuid.New().String(),
				StockLocationID: loc.ID,
				ProjectID:       input.ProjectID,
				SiteID:          input.SiteID,
				Qty:             take,
				UnitValue:       loc.LastUnitCost,
				Currency:        currency,
				AssignedAt:      now,
				UpdatedAt:       now,
			}
			if err := asgRepo.Create(ctx, asg); err != nil {
				return err
			}

			// Par de movimientos: salida en la bodega + entrada al proyecto destino
			notes := fmt.Sprintf("Reserva para proyecto %s / obra %s", input.ProjectID, input.SiteID)
			out := &entity.Movement{
				ID:                 uuid.New().String(),
				Timestamp:          now,
				Kind:               entity.MovementKindNegativeAdjustment,
				MaterialID:         input.MaterialID,
				Qty:                take,
				LocationID:         loc.LocationID,
				DestProjectID:      &input.ProjectID,
				UnitValue:          loc.LastUnitCost,
				Currency:           currency,
				ActorID:            input.ActorID,
				Notes:              notes,
				Status:             entity.MovementStatusActive,
				SourceAssignmentID: &asg.ID,
				CreatedAt:          now,
			}
			if err := movRepo.Create(ctx, out); err != nil {
				return err
			}
			in := &entity.Movement{
				ID:                 uuid.New().String(),
				Timestamp:          now,
				Kind:               entity.MovementKindPositiveAdjustment,
				MaterialID:         input.MaterialID,
				Qty:                take,
				LocationID:         loc.LocationID,
				DestProjectID:      &input.ProjectID,
				UnitValue:          loc.LastUnitCost,
				Currency:           currency,
				ActorID:            input.ActorID,
				Notes:              notes,
				Status:             entity.MovementStatusActive,
				SourceAssignmentID: &asg.ID,
				CreatedAt:          now,
			}
			if err := movRepo.Create(ctx, in); err != nil {
				return err
			}

			lines = append(lines, AllocationLine{
				LocationID:   loc.LocationID,
				AssignmentID: asg.ID,
				Qty:          take,
				UnitCost:     loc.LastUnitCost,
				Currency:     currency,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}
