package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler serves the read-only tables for the selection widgets.
type Handler struct {
	Set *Set
}

type pumpView struct {
	PumpOperatingPoint
	StaticLossMCE *float64 `json:"static_loss_mce,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"version":   h.Set.Version,
		"materials": h.Set.Pipes.All(),
	})
}

func (h *Handler) Sizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.Set.Pipes.Sizes(mux.Vars(r)["material"])
	if errors.Is(err, ErrUnknownMaterial) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, sizes)
}

func (h *Handler) Pumps(w http.ResponseWriter, r *http.Request) {
	pumps := h.Set.Pumps.All()
	out := make([]pumpView, len(pumps))
	for i, p := range pumps {
		out[i].PumpOperatingPoint = p
		if v, ok := h.Set.StaticLosses.StaticLoss(p.Label); ok {
			out[i].StaticLossMCE = &v
		}
	}
	writeJSON(w, out)
}

func (h *Handler) Coils(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Set.Coils.All())
}
