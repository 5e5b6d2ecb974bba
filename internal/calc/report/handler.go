package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"Hydra/internal/calc/pipelength"

	log "github.com/sirupsen/logrus"
)

type Input struct {
	Meta
	Circuit pipelength.Input `json:"circuit"`
}

type Handler struct {
	Calc *pipelength.Calculator
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Calc.Calculate(input.Circuit)
	if err != nil {
		http.Error(w, err.Error(), pipelength.StatusFor(err))
		return
	}

	var buf bytes.Buffer
	id, err := Render(&buf, input.Meta, input.Circuit, res, time.Now())
	if err != nil {
		log.WithError(err).Error("report rendering failed")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	log.WithFields(log.Fields{"report": id, "project": input.Project}).Info("report generated")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"report-%s.pdf\"", id))
	w.Header().Set("X-Report-Id", id)
	w.Write(buf.Bytes())
}
