package models

import (
	"time"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
)

// ID == 0 means the company was never persisted; storage assigns IDs from 1.
type Company struct {
	ID            int64     `bson:"_id" json:"id"`
	CorporateName string    `bson:"corporate_name" json:"corporate_name"`
	Email         string    `bson:"email" json:"email"`
	CNPJ          cnpj.CNPJ `bson:"cnpj" json:"cnpj"` // armazenado normalizado (apenas dígitos)
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName is the label used in event messages.
func (c *Company) DisplayName() string {
	if c.CorporateName != "" {
		return c.CorporateName
	}
	return c.CNPJ.Formatted()
}
