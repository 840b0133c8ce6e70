package sales_api

import (
	"encoding/json"
	"net/http"

	"santas-pos/internal/catalog"
	"santas-pos/internal/events"
	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/sales"
	"santas-pos/internal/utils"
)

type Handler struct {
	Service *sales.Service
	Events  *events.DB
	Catalog *catalog.DB
	Logger  *logger.Logger
}

// Board returns the sales screen payload: active events, active ticket
// types and units sold per (evento, entrada).
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	evs, err := h.Events.ListActive(ctx)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	tts, err := h.Catalog.ListActive(ctx)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	aggs, err := h.Service.Aggregates(ctx)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"eventos":  evs,
		"entradas": tts,
		"ventas":   aggs,
	})
}

// Sell records a walk-in sale and prints its tickets.
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req models.WalkInSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if req.Action == "" {
		utils.RespondError(w, http.StatusBadRequest, "El campo accion es obligatorio.")
		return
	}

	resp, err := h.Service.RecordWalkIn(r.Context(), req)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
