package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex. La cantidad es siempre positiva; la dirección
// la da el tipo, nunca el signo.
const (
	MovementKindPositiveAdjustment = "POSITIVE_ADJUSTMENT" // entrada / ajuste positivo
	MovementKindNegativeAdjustment = "NEGATIVE_ADJUSTMENT" // salida / ajuste negativo
	MovementKindTransfer           = "TRANSFER"            // cambio de proyecto destino
	MovementKindWithdrawal         = "WITHDRAWAL"          // retiro (consumo)
)

// Estados de un movimiento. Un movimiento anulado conserva todos sus datos.
const (
	MovementStatusActive = "ACTIVE"
	MovementStatusVoided = "VOIDED"
)

// Movement representa una entrada inmutable del kardex (tabla inventario_movimientos).
// Solo se anexa; la única mutación permitida es la anotación de anulación que deja
// el camino de reversión. ReversesMovementID es una referencia hacia atrás: un
// movimiento nunca conoce su propia reversión futura.
type Movement struct {
	ID                 string
	Timestamp          time.Time
	Kind               string
	MaterialID         string
	Qty                decimal.Decimal // siempre > 0
	LocationID         string
	OriginProjectID    *string
	DestProjectID      *string
	UnitValue          decimal.Decimal
	Currency           string
	ActorID            string
	Notes              string
	Status             string
	VoidedAt           *time.Time
	VoidedBy           *string
	VoidReason         *string
	ReversesMovementID *string
	SourceAssignmentID *string // retiro contra asignación: de cuál se descontó
	CreatedAt          time.Time
}

// IsActive indica si el movimiento sigue vigente (no anulado).
func (m *Movement) IsActive() bool {
	return m.Status == MovementStatusActive
}

// IsReversal indica si el movimiento es a su vez la reversión de otro.
func (m *Movement) IsReversal() bool {
	return m.ReversesMovementID != nil && *m.ReversesMovementID != ""
}

// SignedEffect devuelve el efecto del movimiento sobre el total en existencia de
// su ubicación: positivo para entradas, negativo para salidas y retiros. Los
// TRANSFER no mueven existencia, solo cambian el proyecto destino.
func (m *Movement) SignedEffect() decimal.Decimal {
	switch m.Kind {
	case MovementKindPositiveAdjustment:
		return m.Qty
	case MovementKindNegativeAdjustment, MovementKindWithdrawal:
		return m.Qty.Neg()
	default:
		return decimal.Zero
	}
}
