package pipelength

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Hydra/internal/hydraulics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerCalc(t *testing.T) {
	h := &Handler{Calculator: newCalculator(t, hydraulics.CorrelationViscosity{})}

	t.Run("should return the evaluation", func(t *testing.T) {
		body := `{"temperature_c":20,"material":"Acier","nominal_size":"2\" (DN 50)","pump_model":"MMTC 33","elbows":4}`
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/pipelength", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var res Result
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, hydraulics.OutcomeOK, res.Outcome)
		assert.Greater(t, res.MaxLengthM, 0.0)
		assert.NotNil(t, res.FrictionFactor)
	})

	t.Run("should reject a malformed payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/pipelength", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should map catalog misses to 400", func(t *testing.T) {
		body := `{"temperature_c":20,"material":"Fonte","nominal_size":"2\" (DN 50)","flow_m3_h":3,"available_head_mce":5}`
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/pipelength", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown material")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(hydraulics.ErrZeroViscosity))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(&hydraulics.ConvergenceError{Method: hydraulics.MethodNewton}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
