package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReserveRequest body para POST /api/ledger/reserve.
type ReserveRequest struct {
	MaterialID string          `json:"material_id"`
	Qty        decimal.Decimal `json:"qty"`
	ProjectID  string          `json:"project_id"`
	SiteID     string          `json:"site_id"`
}

// AllocationLineResponse una línea de la reserva.
type AllocationLineResponse struct {
	LocationID   string          `json:"location_id"`
	AssignmentID string          `json:"assignment_id"`
	Qty          decimal.Decimal `json:"qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Currency     string          `json:"currency"`
}

// TransferAssignmentRequest body para POST /api/ledger/assignments/:id/transfer.
type TransferAssignmentRequest struct {
	NewProjectID string `json:"new_project_id"`
	NewSiteID    string `json:"new_site_id"`
}

// WithdrawRequest body para POST /api/ledger/withdraw. Con assignment_id se
// retira contra esa asignación; sin él, contra el disponible de (material, bodega).
type WithdrawRequest struct {
	AssignmentID string          `json:"assignment_id,omitempty"`
	MaterialID   string          `json:"material_id,omitempty"`
	LocationID   string          `json:"location_id,omitempty"`
	Qty          decimal.Decimal `json:"qty"`
	Notes        string          `json:"notes,omitempty"`
}

// AdjustmentItemRequest un ítem del lote de ajustes manuales.
type AdjustmentItemRequest struct {
	MaterialID  string           `json:"material_id"`
	Delta       decimal.Decimal  `json:"delta"`
	LocationID  string           `json:"location_id,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	NewUnitCost *decimal.Decimal `json:"new_unit_cost,omitempty"`
	NewCurrency *string          `json:"new_currency,omitempty"`
}

// AdjustRequest body para POST /api/ledger/adjust.
type AdjustRequest struct {
	Items []AdjustmentItemRequest `json:"items"`
}

// AdjustmentResultResponse resultado de un ítem del lote, en orden de entrada.
type AdjustmentResultResponse struct {
	MaterialID       string          `json:"material_id"`
	LocationID       string          `json:"location_id"`
	MovementID       string          `json:"movement_id"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
}

// ReverseRequest body para POST /api/ledger/movements/:id/reverse.
type ReverseRequest struct {
	Reason string `json:"reason"`
}

// ReverseResponse ids del original anulado y de su reversión.
type ReverseResponse struct {
	OriginalID string `json:"original_id"`
	ReversalID string `json:"reversal_id"`
}

// MovementResponse una fila del kardex.
type MovementResponse struct {
	ID                 string          `json:"id"`
	Timestamp          time.Time       `json:"timestamp"`
	Kind               string          `json:"kind"`
	MaterialID         string          `json:"material_id"`
	Qty                decimal.Decimal `json:"qty"`
	LocationID         string          `json:"location_id"`
	OriginProjectID    *string         `json:"origin_project_id,omitempty"`
	DestProjectID      *string         `json:"dest_project_id,omitempty"`
	UnitValue          decimal.Decimal `json:"unit_value"`
	Currency           string          `json:"currency"`
	ActorID            string          `json:"actor_id"`
	Notes              string          `json:"notes,omitempty"`
	Status             string          `json:"status"`
	VoidedAt           *time.Time      `json:"voided_at,omitempty"`
	VoidedBy           *string         `json:"voided_by,omitempty"`
	VoidReason         *string         `json:"void_reason,omitempty"`
	ReversesMovementID *string         `json:"reverses_movement_id,omitempty"`
	SourceAssignmentID *string         `json:"source_assignment_id,omitempty"`
}

// KardexResponse una página del kardex.
type KardexResponse struct {
	Total int                `json:"total"`
	Rows  []MovementResponse `json:"rows"`
}
