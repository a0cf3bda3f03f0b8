package renewal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContractStore struct {
	contracts []models.Contract
	from, to  models.Date
}

func (f *fakeContractStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	return nil, faults.NotFoundf("", "contract %d not found", id)
}

func (f *fakeContractStore) ListExpiring(ctx context.Context, from, to models.Date) ([]models.Contract, error) {
	f.from, f.to = from, to
	return f.contracts, nil
}

func newTestRouter(store *fakeContractStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/"), nil, nil, store, nil, nil)
	return r
}

func TestListExpiring(t *testing.T) {
	store := &fakeContractStore{contracts: []models.Contract{
		{ID: 1, ContractNumber: "DH-2024-031"},
		{ID: 2, ContractNumber: "DH-2024-044"},
	}}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contracts/expiring?days=30", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []models.Contract `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, int64(2), body.Pagination.Total)
	assert.Equal(t, "DH-2024-031", body.Data[0].ContractNumber)

	// The queried window spans the requested number of days.
	assert.Equal(t, 30, store.to.DaysSince(store.from))
}

func TestListExpiringRejectsBadWindow(t *testing.T) {
	r := newTestRouter(&fakeContractStore{})

	for _, days := range []string{"0", "-5", "soon"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/contracts/expiring?days="+days, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
