package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	maxUploadBytes = 8 << 20
	xlsxMime       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	Eval *Evaluator
}

type ImportResult struct {
	Result
	Skipped []RowError `json:"skipped,omitempty"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Eval.Run(r.Context(), input.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Import evaluates an uploaded workbook. With ?format=xlsx the answer is a
// workbook too, otherwise JSON.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	items, skipped, err := ReadSheet(file)
	if err != nil {
		log.WithError(err).Warn("batch import rejected")
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	res, err := h.Eval.Run(r.Context(), items)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxMime)
		w.Header().Set("Content-Disposition", "attachment; filename=\"pipelength.xlsx\"")
		if err := WriteSheet(w, items, res); err != nil {
			log.WithError(err).Error("batch export failed")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Result: res, Skipped: skipped})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoItems) || errors.Is(err, ErrTooManyItems) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.WithError(err).Error("batch evaluation failed")
	http.Error(w, "Calculation error", http.StatusInternalServerError)
}
