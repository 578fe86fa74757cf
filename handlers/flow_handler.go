package handlers

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/scout-hq/scout-system/middleware"
	"github.com/scout-hq/scout-system/services"
)

// clientIP strips the port RemoteAddr carries when no proxy rewrote it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type FlowHandler struct {
	flowService       *services.FlowService
	submissionService *services.SubmissionService
	authService       *services.AuthService
}

func NewFlowHandler(flowService *services.FlowService, submissionService *services.SubmissionService, authService *services.AuthService) *FlowHandler {
	return &FlowHandler{
		flowService:       flowService,
		submissionService: submissionService,
		authService:       authService,
	}
}

// Start opens a wizard session for the registration and returns its step list.
func (h *FlowHandler) Start(w http.ResponseWriter, r *http.Request) {
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	session, err := h.flowService.Start(r.Context(), registrationID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"flow": session.View()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FlowHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	session, err := h.flowService.Get(sessionID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": session.View()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FlowHandler) SaveStep(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	stepIndex, err := strconv.Atoi(chi.URLParam(r, "stepIndex"))
	if err != nil || stepIndex < 0 {
		badRequestResponse(w, r, errors.New("invalid stepIndex parameter in URL"))
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.StepInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.flowService.SaveStep(sessionID, userID, stepIndex, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FlowHandler) Back(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	view, err := h.flowService.Back(sessionID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"flow": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FlowHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.flowService.Discard(sessionID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit finalizes the session into a stored submission.
func (h *FlowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	session, err := h.flowService.Get(sessionID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	submitter, err := h.authService.GetByID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	submission, err := h.submissionService.Submit(r.Context(), session, submitter, clientIP(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The session is consumed by a successful submit.
	_ = h.flowService.Discard(sessionID, userID)

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
