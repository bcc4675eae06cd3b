package entity

import "time"

// Warehouse representa una bodega o almacén físico donde se guarda material.
// El catálogo se administra fuera del ledger; aquí solo se consulta para
// resolver la ubicación por defecto de los ajustes.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
