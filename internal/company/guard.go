package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/sentinel"
)

// CNPJLookup finds the company holding an exact canonical cnpj. Absence is
// reported as sentinel.ErrNotFound (a nil company with nil error is treated
// the same way).
type CNPJLookup interface {
	FindByCNPJ(ctx context.Context, c cnpj.CNPJ) (*models.Company, error)
}

// EnsureUniqueCNPJ returns ErrCNPJInUse when candidate belongs to a company
// other than selfID. selfID is 0 for a company that is being created, so any
// holder is a collision.
//
// This is a pre-check for a friendly error. It reads before the caller
// writes, so two concurrent writers can both pass; the unique index of the
// storage backend is what actually rejects the second write.
func EnsureUniqueCNPJ(ctx context.Context, lookup CNPJLookup, candidate cnpj.CNPJ, selfID int64) error {
	holder, err := lookup.FindByCNPJ(ctx, candidate)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup cnpj: %w", err)
	}
	if holder == nil {
		return nil
	}
	if selfID != 0 && holder.ID == selfID {
		return nil
	}
	return ErrCNPJInUse
}
