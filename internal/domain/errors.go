package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores base del dominio. Los errores concretos los envuelven para que el
// llamador pueda clasificarlos con errors.Is.
var (
	// ErrMissingField: un campo obligatorio (price, cost) no se pudo resolver ni con fallback.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidInput: fecha no parseable, precio/coste no numérico, negativo o NaN.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyModelOutput: el predictor no devolvió un valor usable para algún candidato.
	ErrEmptyModelOutput = errors.New("empty model output")
	// ErrSchemaValidation: faltan columnas requeridas en el histórico o en el artefacto del modelo.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// FieldError identifica el campo que provocó un ErrMissingField o ErrInvalidInput.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingField construye un FieldError de tipo ErrMissingField.
func MissingField(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

// InvalidField construye un FieldError de tipo ErrInvalidInput.
func InvalidField(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Err: ErrInvalidInput}
}

// SchemaError lista exactamente las columnas que faltan.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: [%s]", ErrSchemaValidation, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaValidation }
