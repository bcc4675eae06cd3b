package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment representa una reserva de stock destinada a un proyecto/obra
// (tabla inventario_asignado). Pertenece a exactamente una StockLocation: la
// bodega donde el material sigue almacenado. Su cantidad baja con cada retiro
// y nunca se borra, solo se drena hasta cero.
type Assignment struct {
	ID              string
	StockLocationID string
	ProjectID       string
	SiteID          string
	Qty             decimal.Decimal
	UnitValue       decimal.Decimal
	Currency        string
	AssignedAt      time.Time
	UpdatedAt       time.Time
}
