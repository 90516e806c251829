package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"CoinSight/internal/domain/models"
	xhttp "CoinSight/pkg/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindRequest(t *testing.T, target string, req interface{}) interface{} {
	t.Helper()
	e := echo.New()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return xhttp.ReadAndValidateRequest(e.NewContext(r, rec), req)
}

func TestPredictionsRequest_BindsInstrument(t *testing.T) {
	req := &models.PredictionsRequest{}
	verr := bindRequest(t, "/api/predictions?instrument=bitcoin", req)
	require.Nil(t, verr)
	assert.Equal(t, "bitcoin", req.Instrument)
}

func TestPredictionsRequest_RequiresInstrument(t *testing.T) {
	req := &models.PredictionsRequest{}
	verr := bindRequest(t, "/api/predictions", req)
	assert.NotNil(t, verr)
}

func TestPredictRequest_DefaultsHorizon(t *testing.T) {
	req := &models.PredictRequest{}
	verr := bindRequest(t, "/api/predict?instrument=bitcoin", req)
	require.Nil(t, verr)
	assert.Equal(t, 1, req.Horizon)
}

func TestPredictRequest_RejectsUnknownHorizon(t *testing.T) {
	req := &models.PredictRequest{}
	verr := bindRequest(t, "/api/predict?instrument=bitcoin&horizon=3", req)
	assert.NotNil(t, verr)
}
