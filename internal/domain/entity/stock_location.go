package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLocation representa el saldo actual de un material en una ubicación física
// (tabla inventario_actual). Una fila por par (material, bodega); se crea en la
// primera entrada y nunca se borra, aunque su saldo llegue a cero.
type StockLocation struct {
	ID           string
	MaterialID   string
	LocationID   string // bodega donde está físicamente el material
	AvailableQty decimal.Decimal
	ReservedQty  decimal.Decimal // asignado a proyecto, aún no retirado
	LastUnitCost decimal.Decimal
	Currency     *string // código ISO de 3 letras; NULL solo con saldo en cero
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TotalQty devuelve el total en existencia (disponible + reservado).
func (s *StockLocation) TotalQty() decimal.Decimal {
	return s.AvailableQty.Add(s.ReservedQty)
}

// IsTrueZero indica si la fila está en "cero verdadero": sin disponible ni
// reservado. Solo en ese estado se permite editar costo unitario y moneda.
func (s *StockLocation) IsTrueZero() bool {
	return s.TotalQty().IsZero()
}
