package handlers

import "github.com/Werneck0live/cadastro-cnpj/internal/company"

// Body of POST /api/companies and PUT /api/companies/{id}. PUT is a full
// replace, so both carry every mutable field.
// cnpj aceita com ou sem máscara (11.222.333/0001-81 ou 11222333000181).
type CompanyDTO struct {
	Email         string `json:"email" validate:"notblank,email,max=100"`
	CorporateName string `json:"corporate_name" validate:"notblank,max=100"`
	CNPJ          string `json:"cnpj"`
}

func (d CompanyDTO) input() company.Input {
	return company.Input{
		CorporateName: d.CorporateName,
		Email:         d.Email,
		CNPJ:          d.CNPJ,
	}
}
