package company

import "errors"

var (
	ErrNotFound  = errors.New("company not found")
	ErrCNPJInUse = errors.New("cnpj already in use")
)
