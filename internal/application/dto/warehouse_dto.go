package dto

import "time"

// WarehouseResponse una bodega del catálogo (solo lectura desde este servicio).
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
