package models

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a referenced id has no row.
var ErrNotFound = errors.New("registro no encontrado")

// ValidationError is a missing or malformed required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// QuotaExceededError reports that a reservation asked for more units than
// the promoter has left. Available carries the count at decision time.
type QuotaExceededError struct {
	Available int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("no hay cupo suficiente para esta venta (disponible: %d)", e.Available)
}

// ConfigurationError reports missing reference data, such as the catalog
// lacking an Anticipada ticket type.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// PrintingError wraps a failure of the external printing service.
type PrintingError struct {
	Err error
}

func (e *PrintingError) Error() string {
	return fmt.Sprintf("error al enviar el ticket a la impresora: %v", e.Err)
}

func (e *PrintingError) Unwrap() error { return e.Err }
