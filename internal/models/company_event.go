package models

import (
	"fmt"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// labels shown to humans in the ws feed
var actionLabels = map[string]string{
	ActionCreated: "Cadastro",
	ActionUpdated: "Edição",
	ActionDeleted: "Exclusão",
}

// CompanyEvent is published to the broker after every successful write.
type CompanyEvent struct {
	Action    string    `json:"action"`
	CompanyID int64     `json:"company_id"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCompanyEvent(action string, c *Company, at time.Time) CompanyEvent {
	label, ok := actionLabels[action]
	if !ok {
		label = action
	}
	name := c.DisplayName()
	return CompanyEvent{
		Action:    action,
		CompanyID: c.ID,
		CNPJ:      c.CNPJ.String(),
		Name:      name,
		Message:   fmt.Sprintf("%s de EMPRESA %s", label, name),
		Timestamp: at.UTC(),
	}
}
