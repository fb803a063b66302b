package company

import (
	"context"
	"errors"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
)

type repoMock struct {
	FindByIDFn   func(ctx context.Context, id int64) (*models.Company, error)
	FindByCNPJFn func(ctx context.Context, c cnpj.CNPJ) (*models.Company, error)
	FindAllFn    func(ctx context.Context, limit, skip int64) ([]models.Company, error)
	SaveFn       func(ctx context.Context, c *models.Company) (*models.Company, error)
	DeleteFn     func(ctx context.Context, id int64) error
}

func (m *repoMock) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	if m.FindByIDFn == nil {
		return nil, errors.New("FindByIDFn not set")
	}
	return m.FindByIDFn(ctx, id)
}
func (m *repoMock) FindByCNPJ(ctx context.Context, c cnpj.CNPJ) (*models.Company, error) {
	if m.FindByCNPJFn == nil {
		return nil, errors.New("FindByCNPJFn not set")
	}
	return m.FindByCNPJFn(ctx, c)
}
func (m *repoMock) FindAll(ctx context.Context, limit, skip int64) ([]models.Company, error) {
	if m.FindAllFn == nil {
		return nil, errors.New("FindAllFn not set")
	}
	return m.FindAllFn(ctx, limit, skip)
}
func (m *repoMock) Save(ctx context.Context, c *models.Company) (*models.Company, error) {
	if m.SaveFn == nil {
		return nil, errors.New("SaveFn not set")
	}
	return m.SaveFn(ctx, c)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}

type pubMock struct {
	PublishEventFn func(ctx context.Context, ev models.CompanyEvent) error
}

func (p *pubMock) PublishEvent(ctx context.Context, ev models.CompanyEvent) error {
	if p.PublishEventFn == nil {
		return nil
	}
	return p.PublishEventFn(ctx, ev)
}
