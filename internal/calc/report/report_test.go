package report

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Hydra/internal/calc/pipelength"
	"Hydra/internal/catalog"
	"Hydra/internal/hydraulics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalculator(t *testing.T) *pipelength.Calculator {
	t.Helper()
	set, err := catalog.Builtin(catalog.V2)
	require.NoError(t, err)
	return pipelength.New(set, hydraulics.CorrelationViscosity{}, hydraulics.DefaultSolver(), 0)
}

func TestRender(t *testing.T) {
	c := newCalculator(t)
	in := pipelength.Input{TemperatureC: 55, Material: "Cuivre", NominalSize: `2" (DN 50)`, PumpModel: "MMTC 40", Elbows: 6}
	res, err := c.Calculate(in)
	require.NoError(t, err)

	var buf bytes.Buffer
	id, err := Render(&buf, Meta{Project: "Résidence Les Pins", Author: "B. Martin"}, in, res, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestHandlerGenerate(t *testing.T) {
	h := &Handler{Calc: newCalculator(t)}

	t.Run("should return a pdf", func(t *testing.T) {
		body := `{"project":"Test","circuit":{"temperature_c":20,"material":"Acier","nominal_size":"2\" (DN 50)","pump_model":"MMTC 33"}}`
		rec := httptest.NewRecorder()
		h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/report/pdf", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("X-Report-Id"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	})

	t.Run("should reject an invalid circuit", func(t *testing.T) {
		body := `{"circuit":{"temperature_c":20,"material":"Acier","nominal_size":"9\" (DN 225)","flow_m3_h":2,"available_head_mce":5}}`
		rec := httptest.NewRecorder()
		h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/report/pdf", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
