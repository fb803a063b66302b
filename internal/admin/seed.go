package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
)

//go:embed seeds/companies.json
var companiesJSON []byte

type seedItem struct {
	CNPJ          string `json:"cnpj"`
	CorporateName string `json:"corporate_name"`
	Email         string `json:"email"`
}

type Creator interface {
	Create(ctx context.Context, in company.Input) (*models.Company, error)
}

// SeedResult counts what happened to each seed entry.
type SeedResult struct {
	Created, Existing, Invalid int
}

// SeedCompanies é idempotente: cria se não existir; se já existir, ignora.
func SeedCompanies(ctx context.Context, svc Creator, log *slog.Logger) (SeedResult, error) {
	return seed(ctx, svc, log, companiesJSON)
}

func seed(ctx context.Context, svc Creator, log *slog.Logger, raw []byte) (SeedResult, error) {
	var res SeedResult
	var items []seedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return res, fmt.Errorf("decode seeds: %w", err)
	}

	for _, s := range items {
		// timeout curto por item pra não travar
		ictx, cancel := context.WithTimeout(ctx, 3*time.Second)
		c, err := svc.Create(ictx, company.Input{
			CorporateName: s.CorporateName,
			Email:         s.Email,
			CNPJ:          s.CNPJ,
		})
		cancel()

		switch {
		case errors.Is(err, cnpj.ErrInvalid), errors.Is(err, cnpj.ErrEmpty):
			res.Invalid++
			log.Warn("seed_skip_invalid_cnpj", "raw", s.CNPJ, "err", err)
		case errors.Is(err, company.ErrCNPJInUse):
			res.Existing++
			log.Info("seed_company_exists", "cnpj", s.CNPJ)
		case err != nil:
			return res, fmt.Errorf("seed %s: %w", s.CNPJ, err)
		default:
			res.Created++
			log.Info("seed_company_created", "id", c.ID, "cnpj", c.CNPJ.Formatted())
		}
	}

	log.Info("seed_companies_done", "count", len(items),
		"created", res.Created, "existing", res.Existing, "invalid", res.Invalid)
	return res, nil
}
