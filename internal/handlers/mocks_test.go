package handlers

import (
	"context"
	"errors"

	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
)

type svcMock struct {
	CreateFn func(ctx context.Context, in company.Input) (*models.Company, error)
	UpdateFn func(ctx context.Context, id int64, in company.Input) (*models.Company, error)
	FindFn   func(ctx context.Context, id int64) (*models.Company, error)
	ListFn   func(ctx context.Context, limit, skip int64) ([]models.Company, error)
	DeleteFn func(ctx context.Context, id int64) error
}

func (m *svcMock) Create(ctx context.Context, in company.Input) (*models.Company, error) {
	if m.CreateFn == nil {
		return nil, errors.New("CreateFn not set")
	}
	return m.CreateFn(ctx, in)
}
func (m *svcMock) Update(ctx context.Context, id int64, in company.Input) (*models.Company, error) {
	if m.UpdateFn == nil {
		return nil, errors.New("UpdateFn not set")
	}
	return m.UpdateFn(ctx, id, in)
}
func (m *svcMock) Find(ctx context.Context, id int64) (*models.Company, error) {
	if m.FindFn == nil {
		return nil, errors.New("FindFn not set")
	}
	return m.FindFn(ctx, id)
}
func (m *svcMock) List(ctx context.Context, limit, skip int64) ([]models.Company, error) {
	if m.ListFn == nil {
		return nil, errors.New("ListFn not set")
	}
	return m.ListFn(ctx, limit, skip)
}
func (m *svcMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}
