package event_api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"santas-pos/internal/events"
	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/utils"
)

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

// List serves the event calendar. ?upcoming=1 returns the auto-provisioned
// Saturday window, ?calendar=1 the 60-day view; the default is every active
// future event.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		evs []models.Event
		err error
	)
	switch {
	case r.URL.Query().Get("upcoming") == "1":
		evs, err = h.Service.Upcoming(r.Context())
	case r.URL.Query().Get("calendar") == "1":
		evs, err = h.Service.Calendar(r.Context())
	default:
		evs, err = h.Service.ListUpcoming(r.Context())
	}
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, evs)
}

// Create schedules a manual event. The fecha field is parsed in venue time.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.EventUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if req.Name == nil || req.Date == nil || req.Capacity == nil {
		utils.RespondError(w, http.StatusBadRequest, "Campos obligatorios: nombre, fecha, capacidad")
		return
	}

	date, err := parseVenueDate(*req.Date, h.Service.Location)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "El formato de fecha no es válido.")
		return
	}

	detail := ""
	if req.Detail != nil {
		detail = *req.Detail
	}

	ev, err := h.Service.Create(r.Context(), *req.Name, detail, date, *req.Capacity)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("EVENTS", "evento creado: "+ev.Name)
	}
	utils.RespondJSON(w, http.StatusCreated, ev)
}

// Update applies a partial edit to one event.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Debe indicar el ID del evento.")
		return
	}

	var req models.EventUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}

	ev, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ev)
}

// Delete soft-deletes one event.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Debe indicar el ID del evento.")
		return
	}

	if err := h.Service.Deactivate(r.Context(), id); err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func parseVenueDate(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.ParseInLocation(time.RFC3339, raw, loc)
}
