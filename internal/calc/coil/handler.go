package coil

import (
	"encoding/json"
	"errors"
	"net/http"

	"Hydra/internal/catalog"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Coils *catalog.CoilTable
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Coils, input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, catalog.ErrUnknownTank) {
			status = http.StatusBadRequest
		}
		log.WithFields(log.Fields{"tank": input.Tank}).WithError(err).Warn("coil calculation failed")
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
