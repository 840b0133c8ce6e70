package quota_api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/quota"
	"santas-pos/internal/utils"
)

type Handler struct {
	DB     *quota.DB
	Logger *logger.Logger
}

type quotaRow struct {
	ID           int64 `json:"id"`
	PromoterID   int64 `json:"usuario_id"`
	EventID      int64 `json:"evento_id"`
	TicketTypeID int64 `json:"entrada_id"`
	Total        int   `json:"cupo_total"`
	Consumed     int   `json:"cupo_vendido"`
	Available    int   `json:"cupo_disponible"`
}

// List returns one quota row per active promoter-role user for the given
// event and ticket type, auto-creating missing rows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err1 := strconv.ParseInt(r.URL.Query().Get("evento_id"), 10, 64)
	ticketTypeID, err2 := strconv.ParseInt(r.URL.Query().Get("entrada_id"), 10, 64)
	if err1 != nil || err2 != nil || eventID == 0 || ticketTypeID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Debe indicar evento_id y entrada_id.")
		return
	}

	views, err := h.DB.ListForEvent(r.Context(), eventID, ticketTypeID)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

// Upsert sets cupo_total for a triple, creating the row when absent. The
// new total is accepted even below current consumption.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.QuotaUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if req.PromoterID == 0 || req.EventID == 0 || req.TicketTypeID == 0 || req.Total == nil {
		utils.RespondError(w, http.StatusBadRequest, "usuario_id, evento_id, entrada_id y cupo_total son obligatorios.")
		return
	}

	row, err := h.DB.SetTotal(r.Context(), req.PromoterID, req.EventID, req.TicketTypeID, *req.Total)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}

	if h.Logger != nil {
		h.Logger.LogQuota("cupo_total", row.PromoterID, row.EventID,
			"cupo actualizado a "+strconv.Itoa(row.Total))
	}

	utils.RespondJSON(w, http.StatusOK, quotaRow{
		ID:           row.ID,
		PromoterID:   row.PromoterID,
		EventID:      row.EventID,
		TicketTypeID: row.TicketTypeID,
		Total:        row.Total,
		Consumed:     row.Consumed,
		Available:    row.Available(),
	})
}
