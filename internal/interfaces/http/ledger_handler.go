package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-erp/internal/application/dto"
	"github.com/tu-usuario/kardex-erp/internal/application/ledger"
	"github.com/tu-usuario/kardex-erp/internal/domain"
	"github.com/tu-usuario/kardex-erp/internal/domain/entity"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// LedgerHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type LedgerHandler struct {
	uc *ledger.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Reserve POST /api/ledger/reserve: reserva material a un proyecto/obra.
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines, err := h.uc.Reserve(c.Context(), ledger.ReserveInput{
		MaterialID: in.MaterialID,
		Qty:        in.Qty,
		ProjectID:  in.ProjectID,
		SiteID:     in.SiteID,
		ActorID:    actorID,
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	out := make([]dto.AllocationLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, dto.AllocationLineResponse{
			LocationID:   line.LocationID,
			AssignmentID: line.AssignmentID,
			Qty:          line.Qty,
			UnitCost:     line.UnitCost,
			Currency:     line.Currency,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"allocations": out})
}

// TransferAssignment POST /api/ledger/assignments/:id/transfer: re-destina una asignación.
func (h *LedgerHandler) TransferAssignment(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.TransferAssignment(c.Context(), ledger.TransferAssignmentInput{
		AssignmentID: c.Params("id"),
		NewProjectID: in.NewProjectID,
		NewSiteID:    in.NewSiteID,
		ActorID:      actorID,
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	return c.JSON(fiber.Map{"message": "asignación trasladada"})
}

// Withdraw POST /api/ledger/withdraw: retiro (consumo) de material.
func (h *LedgerHandler) Withdraw(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.WithdrawRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Withdraw(c.Context(), ledger.WithdrawInput{
		AssignmentID: in.AssignmentID,
		MaterialID:   in.MaterialID,
		LocationID:   in.LocationID,
		Qty:          in.Qty,
		ActorID:      actorID,
		Notes:        in.Notes,
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"movement_id": result.MovementID,
		"remaining":   result.Remaining,
	})
}

// Adjust POST /api/ledger/adjust: lote de ajustes manuales (solo superusuario).
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]ledger.AdjustmentItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, ledger.AdjustmentItem{
			MaterialID:  item.MaterialID,
			Delta:       item.Delta,
			LocationID:  item.LocationID,
			Notes:       item.Notes,
			NewUnitCost: item.NewUnitCost,
			NewCurrency: item.NewCurrency,
		})
	}
	results, err := h.uc.Adjust(c.Context(), ledger.AdjustInput{
		Items:        items,
		ActorID:      actorID,
		IsPrivileged: IsPrivileged(c),
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	out := make([]dto.AdjustmentResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, dto.AdjustmentResultResponse{
			MaterialID:       r.MaterialID,
			LocationID:       r.LocationID,
			MovementID:       r.MovementID,
			ResultingBalance: r.ResultingBalance,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": out})
}

// Reverse POST /api/ledger/movements/:id/reverse: revierte un movimiento (solo superusuario).
func (h *LedgerHandler) Reverse(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReverseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Reverse(c.Context(), ledger.ReverseInput{
		MovementID:   c.Params("id"),
		Reason:       in.Reason,
		ActorID:      actorID,
		IsPrivileged: IsPrivileged(c),
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReverseResponse{
		OriginalID: result.OriginalID,
		ReversalID: result.ReversalID,
	})
}

// Kardex GET /api/ledger/kardex: consulta paginada del historial de movimientos.
func (h *LedgerHandler) Kardex(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	filter := repository.KardexFilter{
		MaterialID:    optionalQuery(c, "material_id"),
		ProjectID:     optionalQuery(c, "project_id"),
		LocationID:    optionalQuery(c, "location_id"),
		Kind:          optionalQuery(c, "kind"),
		IncludeVoided: c.QueryBool("include_voided"),
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "date_from inválido (RFC3339)"})
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "date_to inválido (RFC3339)"})
		}
		filter.DateTo = &t
	}

	result, err := h.uc.QueryKardex(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return mapLedgerError(c, err)
	}
	rows := make([]dto.MovementResponse, 0, len(result.Rows))
	for _, m := range result.Rows {
		rows = append(rows, toMovementResponse(m))
	}
	return c.JSON(dto.KardexResponse{Total: result.Total, Rows: rows})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                 m.ID,
		Timestamp:          m.Timestamp,
		Kind:               m.Kind,
		MaterialID:         m.MaterialID,
		Qty:                m.Qty,
		LocationID:         m.LocationID,
		OriginProjectID:    m.OriginProjectID,
		DestProjectID:      m.DestProjectID,
		UnitValue:          m.UnitValue,
		Currency:           m.Currency,
		ActorID:            m.ActorID,
		Notes:              m.Notes,
		Status:             m.Status,
		VoidedAt:           m.VoidedAt,
		VoidedBy:           m.VoidedBy,
		VoidReason:         m.VoidReason,
		ReversesMovementID: m.ReversesMovementID,
		SourceAssignmentID: m.SourceAssignmentID,
	}
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

// mapLedgerError traduce los errores de dominio del ledger a códigos HTTP.
func mapLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrPriceEditNotAllowed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRICE_EDIT_NOT_ALLOWED", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyVoided):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_VOIDED", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyReversed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_REVERSED", Message: err.Error()})
	case errors.Is(err, domain.ErrCannotReverseReversal):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANNOT_REVERSE_REVERSAL", Message: err.Error()})
	case errors.Is(err, domain.ErrNotReversible):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NOT_REVERSIBLE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
