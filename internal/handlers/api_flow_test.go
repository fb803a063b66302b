package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/metrics"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/repository"
)

// Full stack over the in-memory store: the uniqueness rule as seen by a client.
func TestAPI_CNPJUniquenessFlow(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := company.NewService(repository.NewMemoryCompanyRepository(), nil, m, quietLog)
	h := NewCompanyHandler(svc, quietLog, 0).Router(m)

	create := func(name, doc string) *models.Company {
		rr := do(t, h, http.MethodPost, "/api/companies",
			`{"email":"x@y.com","corporate_name":"`+name+`","cnpj":"`+doc+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var c models.Company
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
		return &c
	}
	put := func(id int64, doc string) int {
		return do(t, h, http.MethodPut, "/api/companies/"+strconv.FormatInt(id, 10),
			`{"email":"x@y.com","corporate_name":"renamed","cnpj":"`+doc+`"}`).Code
	}

	r1 := create("R1", "11.222.333/0001-81")
	r2 := create("R2", "45723174000110")
	assert.Equal(t, "11222333000181", r1.CNPJ.String())

	// same number in another format is still a duplicate
	rr := do(t, h, http.MethodPost, "/api/companies", `{"email":"x@y.com","corporate_name":"dup","cnpj":"11222333000181"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Company with this CNPJ already exists.", errorMessage(t, rr))

	assert.Equal(t, http.StatusOK, put(r1.ID, "11222333000181"), "R1 keeps its own cnpj")
	assert.Equal(t, http.StatusBadRequest, put(r2.ID, "11.222.333/0001-81"), "R2 cannot take R1's cnpj")
	assert.Equal(t, http.StatusOK, put(r1.ID, "04.252.011/0001-10"), "R1 moves to a fresh cnpj")
	assert.Equal(t, http.StatusNotFound, put(999, "11.222.333/0001-81"))

	rr = do(t, h, http.MethodPost, "/api/companies", `{"email":"x@y.com","corporate_name":"bad","cnpj":"11222333000165"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "cnpj must be a valid cnpj", errorMessage(t, rr))

	rr = do(t, h, http.MethodGet, "/api/companies/"+strconv.FormatInt(r1.ID, 10), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Company
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "04252011000110", got.CNPJ.String())
	assert.Equal(t, "renamed", got.CorporateName)

	rr = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `cadastro_cnpj_rejections_total{reason="in_use"} 2`)
}
