package presale_api

import (
	"encoding/json"
	"net/http"

	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/presale"
	"santas-pos/internal/utils"
)

type Handler struct {
	Service *presale.Service
	Logger  *logger.Logger
}

// List returns pending pre-sales with joined names, oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.List(r.Context())
	if err != nil {
		utils.RespondForError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, details)
}

// Handle dispatches the POST body on its accion field: crear, imprimir or
// eliminar. An absent accion means crear.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.PreSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if req.Action == "" {
		req.Action = models.PreSaleActionCreate
	}

	switch req.Action {
	case models.PreSaleActionCreate:
		h.create(w, r, req)
	case models.PreSaleActionPrint:
		h.redeem(w, r, req)
	case models.PreSaleActionDelete:
		h.delete(w, r, req)
	default:
		utils.RespondError(w, http.StatusBadRequest, "Acción no soportada.")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, req models.PreSaleRequest) {
	detail, err := h.Service.Create(r.Context(), req)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"mensaje":    "Anticipada registrada correctamente.",
		"anticipada": detail,
	})
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request, req models.PreSaleRequest) {
	if req.ID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Debe indicar el ID de la anticipada.")
		return
	}

	detail, err := h.Service.Redeem(r.Context(), req.ID)
	if err != nil {
		utils.RespondForError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"mensaje":      "Ticket enviado a impresión y retirado del listado.",
		"id_eliminado": req.ID,
		"entrada":      detail.TicketTypeName,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, req models.PreSaleRequest) {
	if req.ID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Debe indicar el ID de la anticipada a eliminar.")
		return
	}

	if err := h.Service.Delete(r.Context(), req.ID); err != nil {
		utils.RespondForError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"mensaje":      "Registro eliminado correctamente.",
		"id_eliminado": req.ID,
	})
}
