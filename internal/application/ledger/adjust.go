package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// AdjustmentItem un ajuste manual sobre el disponible de un material.
// LocationID vacío: se resuelve la bodega de mayor saldo del material, o la
// primera bodega registrada si el material no tiene inventario.
type AdjustmentItem struct {
	MaterialID  string
	Delta       decimal.Decimal // distinto de cero; el signo da la dirección
	LocationID  string
	Notes       string
	NewUnitCost *decimal.Decimal // solo desde cero verdadero y con delta > 0
	NewCurrency *string
}

// AdjustInput lote de ajustes. IsPrivileged la resuelve la capa de autorización
// del caller; el ledger no consulta usuarios ni roles por su cuenta.
type AdjustInput struct {
	Items        []AdjustmentItem
	ActorID      string
	IsPrivileged bool
}

// AdjustmentResult resultado de un ítem del lote, en el orden de entrada.
type AdjustmentResult struct {
	MaterialID       string
	LocationID       string
	MovementID       string
	ResultingBalance decimal.Decimal // disponible + reservado tras el ajuste
}

// Adjust aplica un lote de ajustes manuales en una sola transacción: todos o
// ninguno. Reglas por ítem: el disponible no puede quedar negativo, y el costo
// unitario/moneda solo se editan cruzando hacia arriba desde saldo en cero
// verdadero (así no se reprecia material que sigue en libros). Requiere caller
// privilegiado; sin el flag se rechaza antes de tocar fila alguna.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) ([]AdjustmentResult, error) {
	if !input.IsPrivileged {
		return nil, domain.ErrForbidden
	}
	if input.ActorID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range input.Items {
		if item.MaterialID == "" || item.Delta.IsZero() {
			return nil, domain.ErrInvalidInput
		}
		// Costo y moneda viajan juntos o no viajan
		if (item.NewUnitCost == nil) != (item.NewCurrency == nil) {
			return nil, domain.ErrInvalidInput
		}
		if item.NewCurrency != nil && len(*item.NewCurrency) != 3 {
			return nil, domain.ErrInvalidInput
		}
	}

	// Resuelve ubicaciones por defecto antes de bloquear nada (lecturas sin lock,
	// política determinista: mayor saldo, o primera bodega registrada).
	resolved := make([]string, len(input.Items))
	for i, item := range input.Items {
		if item.LocationID != "" {
			resolved[i] = item.LocationID
			continue
		}
		locID, err := uc.stockRepo.ResolveDefaultLocation(ctx, item.MaterialID)
		if err != nil {
			return nil, err
		}
		if locID == "" {
			wh, err := uc.whRepo.FirstRegistered(ctx)
			if err != nil {
				return nil, err
			}
			if wh == nil {
				return nil, domain.ErrNotFound
			}
			locID = wh.ID
		}
		resolved[i] = locID
	}

	type stockKey struct {
		materialID string
		locationID string
	}

	now := time.Now()
	results := make([]AdjustmentResult, len(input.Items))

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockLocationRepository,
		asgRepo repository.AssignmentRepository,
	) error {
		// Localiza sin bloquear las filas existentes del lote y bloquéalas en
		// orden ascendente de id: el mismo orden total que usa Reserve sobre el
		// mismo material. Las filas que aún no existen se crean al final, con
		// los bloqueos de las existentes ya tomados.
		locked := make(map[stockKey]*entity.StockLocation)
		keyByID := make(map[string]stockKey)
		var existingIDs []string
		var missing []stockKey
		for i := range input.Items {
			key := stockKey{input.Items[i].MaterialID, resolved[i]}
			if _, seen := locked[key]; seen {
				continue
			}
			locked[key] = nil
			loc, err := stockRepo.Get(ctx, key.materialID, key.locationID)
			if err != nil {
				return err
			}
			if loc == nil {
				missing = append(missing, key)
				continue
			}
			existingIDs = append(existingIDs, loc.ID)
			keyByID[loc.ID] = key
		}
		sort.Strings(existingIDs)
		for _, id := range existingIDs {
			loc, err := stockRepo.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if loc == nil {
				// Las filas de inventario nunca se borran
				return domain.ErrNotFound
			}
			locked[keyByID[id]] = loc
		}
		sort.Slice(missing, func(a, b int) bool {
			if missing[a].materialID != missing[b].materialID {
				return missing[a].materialID < missing[b].materialID
			}
			return missing[a].locationID < missing[b].locationID
		})
		for _, key := range missing {
			loc, err := stockRepo.GetOrCreateForUpdate(ctx, key.materialID, key.locationID)
			if err != nil {
				return err
			}
			locked[key] = loc
		}

		for i, item := range input.Items {
			locationID := resolved[i]
			loc := locked[stockKey{item.MaterialID, locationID}]

			priorTotal := loc.TotalQty()
			if loc.AvailableQty.Add(item.Delta).IsNegative() {
				return domain.ErrInsufficientStock
			}
			editingPrice := item.NewUnitCost != nil
			if editingPrice && (!priorTotal.IsZero() || !item.Delta.GreaterThan(decimal.Zero)) {
				return domain.ErrPriceEditNotAllowed
			}
			// Primera entrada en una fila sin moneda: debe traer costo y moneda,
			// el saldo no puede quedar positivo sin precio en libros.
			if loc.Currency == nil && item.Delta.GreaterThan(decimal.Zero) && !editingPrice {
				return domain.ErrInvalidInput
			}

			loc.AvailableQty = loc.AvailableQty.Add(item.Delta)
			if editingPrice {
				loc.LastUnitCost = *item.NewUnitCost
				loc.Currency = item.NewCurrency
			}
			loc.UpdatedAt = now
			if err := stockRepo.Update(ctx, loc); err != nil {
				return err
			}

			kind := entity.MovementKindPositiveAdjustment
			if item.Delta.IsNegative() {
				kind = entity.MovementKindNegativeAdjustment
			}
			currency := ""
			if loc.Currency != nil {
				currency = *loc.Currency
			}
			mov := &entity.Movement{
				ID:         uuid.New().String(),
				Timestamp:  now,
				Kind:       kind,
				MaterialID: item.MaterialID,
				Qty:        item.Delta.Abs(),
				LocationID: locationID,
				UnitValue:  loc.LastUnitCost,
				Currency:   currency,
				ActorID:    input.ActorID,
				Notes:      item.Notes,
				Status:     entity.MovementStatusActive,
				CreatedAt:  now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}

			results[i] = AdjustmentResult{
				MaterialID:       item.MaterialID,
				LocationID:       locationID,
				MovementID:       mov.ID,
				ResultingBalance: loc.TotalQty(),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
