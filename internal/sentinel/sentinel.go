// Package sentinel holds the storage-level facts every repository backend
// reports. Services translate them into domain errors.
package sentinel

import "errors"

var (
	// ErrNotFound: no document matches the id or cnpj.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the write was rejected by a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)
