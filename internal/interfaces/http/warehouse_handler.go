package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-erp/internal/application/dto"
	"github.com/tu-usuario/kardex-erp/internal/domain/repository"
)

// WarehouseHandler expone el catálogo de bodegas en modo consulta. El alta y la
// edición de bodegas viven en otro servicio; aquí solo se listan para que los
// clientes resuelvan nombres y elijan ubicación en ajustes y retiros.
type WarehouseHandler struct {
	repo repository.WarehouseRepository
}

// NewWarehouseHandler construye el handler del catálogo.
func NewWarehouseHandler(repo repository.WarehouseRepository) *WarehouseHandler {
	return &WarehouseHandler{repo: repo}
}

// List GET /api/warehouses
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	list, err := h.repo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error consultando bodegas"})
	}
	out := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		out = append(out, dto.WarehouseResponse{
			ID:        w.ID,
			Name:      w.Name,
			Address:   w.Address,
			CreatedAt: w.CreatedAt,
		})
	}
	return c.JSON(out)
}

// Get GET /api/warehouses/:id
func (h *WarehouseHandler) Get(c *fiber.Ctx) error {
	w, err := h.repo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error consultando bodega"})
	}
	if w == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "bodega no encontrada"})
	}
	return c.JSON(dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
	})
}
