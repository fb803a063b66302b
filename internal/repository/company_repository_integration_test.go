//go:build integration
// +build integration

package repository

/*
	Para Rodar: go test -tags=integration -v ./internal/repository -run TestCompanyRepository_Integration -count=1

	obs: Rodar todos os de integração: go test -tags=integration -v ./... -count=1
*/

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/db"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/sentinel"
)

func newMongoRepo(t *testing.T) *CompanyRepository {
	t.Helper()
	ctx := context.Background()

	// Sobe Mongo real
	mongoC, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:7"))
	require.NoError(t, err, "start mongo")
	t.Cleanup(func() { _ = mongoC.Terminate(ctx) })

	uri, err := mongoC.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := db.NewMongoClient(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	repo := NewCompanyRepository(client.Database("testdb"))
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

// Exercita: Save(insert) -> FindByID -> FindByCNPJ -> Save(replace) -> FindAll -> Delete
func TestCompanyRepository_Integration_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMongoRepo(t)

	created, err := repo.Save(ctx, &models.Company{
		CorporateName: "ACME S.A.",
		Email:         "contato@acme.com.br",
		CNPJ:          acmeCNPJ,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, "11222333000181", got.CNPJ.String())

	byCNPJ, err := repo.FindByCNPJ(ctx, acmeCNPJ)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCNPJ.ID)

	got.CorporateName = "ACME REPLACED"
	got.CNPJ = otherCNPJ
	replaced, err := repo.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)

	_, err = repo.FindByCNPJ(ctx, acmeCNPJ)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	second, err := repo.Save(ctx, &models.Company{CorporateName: "Second", CNPJ: acmeCNPJ})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	list, err := repo.FindAll(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), sentinel.ErrNotFound)
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// The unique index rejects a duplicate even when the pre-check is skipped.
func TestCompanyRepository_Integration_UniqueIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMongoRepo(t)

	first, err := repo.Save(ctx, &models.Company{CNPJ: acmeCNPJ})
	require.NoError(t, err)

	_, err = repo.Save(ctx, &models.Company{CNPJ: acmeCNPJ})
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// re-saving with its own cnpj is fine
	_, err = repo.Save(ctx, first)
	assert.NoError(t, err)

	// the service reports the index rejection as ErrCNPJInUse
	svc := company.NewService(repo, nil, nil, nil)
	_, err = svc.Create(ctx, company.Input{CorporateName: "Dup", CNPJ: acmeCNPJ.Formatted()})
	assert.ErrorIs(t, err, company.ErrCNPJInUse)
}
