package domain

import "errors"

// Errores de dominio del ledger (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrForbidden             = errors.New("acceso denegado")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrPriceEditNotAllowed   = errors.New("el costo unitario solo puede editarse desde saldo en cero")
	ErrAlreadyVoided         = errors.New("el movimiento ya está anulado")
	ErrAlreadyReversed       = errors.New("el movimiento ya fue revertido")
	ErrCannotReverseReversal = errors.New("no se puede revertir una reversión")
	ErrNotReversible         = errors.New("tipo de movimiento no reversible")
)
