package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"roomly/internal/meetings/calendar"
	"roomly/internal/meetings/service"
	httputil "roomly/pkg/http"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type MeetingHandler struct {
	service service.MeetingService
	log     *logger.Logger
}

func NewMeetingHandler(service service.MeetingService, log *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		service: service,
		log:     log,
	}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	meeting, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, meeting); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *MeetingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "CheckAvailability")
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

// List accepts room_id, member_id, from and to query parameters. from/to
// select meetings overlapping that window.
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := model.MeetingFilter{
		RoomID:   httputil.ExtractString(r, "room_id"),
		MemberID: httputil.ExtractString(r, "member_id"),
	}

	from, ok, err := httputil.ExtractInt64(r, "from")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	if ok {
		filter.From = &from
	}

	to, ok, err := httputil.ExtractInt64(r, "to")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	if ok {
		filter.To = &to
	}

	meetings, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, meetings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	meeting, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, meeting); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, "Meeting deleted"); err != nil {
		h.log.Error("failed to write message response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *MeetingHandler) RoomCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ics, err := h.service.RoomCalendar(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "RoomCalendar", err)
		return
	}

	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="room.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ics)); err != nil {
		h.log.Error("failed to write calendar response", "handler", "RoomCalendar", "operation", "Write", "error", err)
	}
}

func (h *MeetingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *MeetingHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *MeetingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/meetings/create", h.Create)
	router.POST("/meetings/availability", h.CheckAvailability)
	router.GET("/meetings", h.List)
	router.GET("/meetings/id/:id", h.GetByID)
	router.DELETE("/meetings/id/:id", h.Delete)
	router.GET("/meetings/room/:id/calendar.ics", h.RoomCalendar)
}
