package pipelength

import (
	"encoding/json"
	"errors"
	"net/http"

	"Hydra/internal/catalog"
	"Hydra/internal/hydraulics"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Calculator *Calculator
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Calculator.Calculate(input)
	if err != nil {
		log.WithFields(log.Fields{
			"material": input.Material,
			"size":     input.NominalSize,
			"pump":     input.PumpModel,
		}).WithError(err).Warn("pipe length calculation failed")
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// StatusFor maps a calculation error to an HTTP status: caller mistakes are
// 400, a Colebrook solve that did not converge is 422.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, hydraulics.ErrNoConvergence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, catalog.ErrUnknownMaterial),
		errors.Is(err, catalog.ErrUnknownSize),
		errors.Is(err, catalog.ErrUnknownPump),
		errors.Is(err, catalog.ErrUnknownTank),
		errors.Is(err, hydraulics.ErrNonPositiveDiameter),
		errors.Is(err, hydraulics.ErrZeroViscosity),
		errors.Is(err, hydraulics.ErrNonPositiveReynolds),
		errors.Is(err, hydraulics.ErrNegativeFlow),
		errors.Is(err, hydraulics.ErrNegativeLoss),
		errors.Is(err, hydraulics.ErrNegativeRoughness):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
