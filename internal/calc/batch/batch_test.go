package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Hydra/internal/calc/pipelength"
	"Hydra/internal/catalog"
	"Hydra/internal/hydraulics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const dn50 = `2" (DN 50)`

func newEvaluator(t *testing.T, workers int) *Evaluator {
	t.Helper()
	set, err := catalog.Builtin(catalog.V2)
	require.NoError(t, err)
	calc := pipelength.New(set, hydraulics.CorrelationViscosity{}, hydraulics.DefaultSolver(), 0)
	return &Evaluator{Calc: calc, Workers: workers}
}

func sampleItems() []pipelength.Input {
	return []pipelength.Input{
		{TemperatureC: 20, Material: "Acier", NominalSize: dn50, PumpModel: "MMTC 33"},
		{TemperatureC: 20, Material: "Fonte", NominalSize: dn50, PumpModel: "MMTC 33"},
		{TemperatureC: 60, Material: "Cuivre", NominalSize: dn50, FlowM3H: 3, AvailableHeadMCE: 5, Elbows: 10},
		{TemperatureC: 20, Material: "Acier", NominalSize: dn50, PumpModel: "MMTC 33", ExtraLossesMCE: []float64{9}},
	}
}

func TestEvaluatorRun(t *testing.T) {
	e := newEvaluator(t, 3)

	t.Run("should keep order and isolate failures", func(t *testing.T) {
		items := sampleItems()
		res, err := e.Run(context.Background(), items)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Count)
		assert.Equal(t, 1, res.Failed)
		for i, o := range res.Results {
			assert.Equal(t, i, o.Index)
		}
		assert.Equal(t, hydraulics.OutcomeOK, res.Results[0].Result.Outcome)
		assert.Nil(t, res.Results[1].Result)
		assert.Equal(t, http.StatusBadRequest, res.Results[1].Status)
		assert.Contains(t, res.Results[1].Error, "unknown material")
		assert.Equal(t, hydraulics.OutcomeNoMargin, res.Results[3].Result.Outcome)

		single, err := e.Calc.Calculate(items[2])
		require.NoError(t, err)
		assert.Equal(t, single, *res.Results[2].Result)
	})

	t.Run("should match a sequential run", func(t *testing.T) {
		seq := newEvaluator(t, 1)
		a, err := seq.Run(context.Background(), sampleItems())
		require.NoError(t, err)
		b, err := e.Run(context.Background(), sampleItems())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("should refuse empty and oversized batches", func(t *testing.T) {
		_, err := e.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoItems)
		_, err = e.Run(context.Background(), make([]pipelength.Input, MaxItems+1))
		assert.ErrorIs(t, err, ErrTooManyItems)
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.Run(ctx, sampleItems())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadSheet(t *testing.T) {
	buf := workbook(t, [][]any{
		{20, "Acier", dn50, "", "MMTC 33", "", 4, "0,5", "0.2;0,3", "true"},
		{"chaud", "Acier", dn50},
		{35, "Cuivre", `1" 1/2 (DN 40)`, 4.47, "", 5.9},
	})

	items, skipped, err := ReadSheet(buf)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, pipelength.Input{
		TemperatureC:       20,
		Material:           "Acier",
		NominalSize:        dn50,
		PumpModel:          "MMTC 33",
		Elbows:             4,
		ExtraDzeta:         0.5,
		ExtraLossesMCE:     []float64{0.2, 0.3},
		DeductStaticLosses: true,
	}, items[0])
	assert.Equal(t, 4.47, items[1].FlowM3H)
	assert.Equal(t, 5.9, items[1].AvailableHeadMCE)

	require.Len(t, skipped, 1)
	assert.Equal(t, 3, skipped[0].Row)
	assert.Contains(t, skipped[0].Err, "temperature_c")
}

func TestWriteSheet(t *testing.T) {
	e := newEvaluator(t, 2)
	items := sampleItems()
	res, err := e.Run(context.Background(), items)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSheet(&buf, items, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "temperature_c", rows[0][0])
	assert.Equal(t, "error", rows[0][len(rows[0])-1])
	assert.Equal(t, "ok", rows[1][15])
	assert.Contains(t, rows[2][len(rows[2])-1], "unknown material")
	assert.Equal(t, "no_margin", rows[4][15])
}

func TestHandler(t *testing.T) {
	h := &Handler{Eval: newEvaluator(t, 2)}

	t.Run("should evaluate a JSON batch", func(t *testing.T) {
		body, err := json.Marshal(Input{Items: sampleItems()})
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		var res Result
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 4, res.Count)
	})

	t.Run("should refuse an empty batch", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewReader([]byte(`{"items":[]}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	upload := func(t *testing.T, target string) *httptest.ResponseRecorder {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "circuits.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook(t, [][]any{{20, "Acier", dn50, "", "MMTC 33"}}).Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, target, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.Import(rec, req)
		return rec
	}

	t.Run("should import a workbook", func(t *testing.T) {
		rec := upload(t, "/api/batch/xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		var res ImportResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 1, res.Count)
		assert.Zero(t, res.Failed)
	})

	t.Run("should answer with a workbook", func(t *testing.T) {
		rec := upload(t, "/api/batch/xlsx?format=xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxMime, rec.Header().Get("Content-Type"))
		f, err := excelize.OpenReader(rec.Body)
		require.NoError(t, err)
		defer f.Close()
		v, err := f.GetCellValue("Results", "P2")
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("should require a file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Import(rec, httptest.NewRequest(http.MethodPost, "/api/batch/xlsx", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
