package handler

import (
	"net/http"

	"mentorbook/internal/sessions/service"
	apperrors "mentorbook/pkg/errors"
	httputil "mentorbook/pkg/http"
	"mentorbook/pkg/logger"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SessionHandler struct {
	service service.SessionService
	log     *logger.Logger
}

func NewSessionHandler(service service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

// Book handles POST /sessions. The mentee is always the authenticated user.
func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, role, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, "Book", apperrors.Unauthorized("Authentication required"))
		return
	}
	if role != middleware.RoleMentee {
		h.writeError(w, "Book", apperrors.Forbidden("Only mentees can book sessions"))
		return
	}

	var req model.SessionBookingRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.writeError(w, "Book", err)
		return
	}
	req.MenteeID = userID

	session, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, model.SessionResponse{Success: true, Session: session}); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, role, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	session, err := h.service.GetByID(r.Context(), ps.ByName("id"), userID, role)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, role, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, "List", apperrors.Unauthorized("Authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.SessionFilter{
		MentorID: query.Get("mentor_id"),
		MenteeID: query.Get("mentee_id"),
		Status:   query.Get("status"),
	}

	sessions, total, err := h.service.List(r.Context(), filter, userID, role, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, sessions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.SessionCancelRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	session, err := h.service.Cancel(r.Context(), ps.ByName("id"), userID, &req)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, "Confirm", apperrors.Unauthorized("Authentication required"))
		return
	}

	session, err := h.service.Confirm(r.Context(), ps.ByName("id"), userID)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/sessions", h.Book)
	router.GET("/sessions", h.List)
	router.GET("/sessions/:id", h.GetByID)
	router.POST("/sessions/:id/cancel", h.Cancel)
	router.POST("/sessions/:id/confirm", h.Confirm)
}
