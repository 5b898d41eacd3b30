package handlers

import (
	"errors"
	"io"
	"net/http"

	"convosched/services/dialogue"
	"convosched/services/scheduling"
	"convosched/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DialogueHandler exposes the conversational scheduling engine to voice and
// text front ends.
type DialogueHandler struct {
	Service dialogue.DialogueService
	Logger  *zap.Logger
}

func NewDialogueHandler(svc dialogue.DialogueService, logger *zap.Logger) *DialogueHandler {
	return &DialogueHandler{Service: svc, Logger: logger}
}

// StartSessionRequest carries the optional opening utterance.
type StartSessionRequest struct {
	Text string `json:"text"`
}

// SubmitTurnRequest carries one user utterance for an existing session.
type SubmitTurnRequest struct {
	Text string `json:"text" binding:"required"`
}

// StartSession creates a new dialogue session, optionally processing an
// initial utterance.
func (h *DialogueHandler) StartSession(c *gin.Context) {
	// An absent body means no opening utterance; chunked requests report no
	// ContentLength, so the bind is attempted unconditionally.
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	resp, err := h.Service.StartSession(c.Request.Context(), req.Text)
	if err != nil {
		h.Logger.Error("failed to start dialogue session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to start session", err.Error())
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SubmitTurn processes one utterance for the session in the path.
func (h *DialogueHandler) SubmitTurn(c *gin.Context) {
	sessionID := c.Param("sessionID")

	var req SubmitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	resp, err := h.Service.SubmitTurn(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		if scheduling.HasCode(err, scheduling.CodeSessionExpired) {
			utils.JSONError(c, http.StatusGone, "Session expired", "Start a new session; expired sessions keep no partial data.")
			return
		}
		h.Logger.Error("failed to process turn",
			zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process turn", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSessionSummary returns the turns, collected fields, and state for a
// session, falling back to the audit transcript for evicted sessions.
func (h *DialogueHandler) GetSessionSummary(c *gin.Context) {
	sessionID := c.Param("sessionID")

	summary, err := h.Service.GetSessionSummary(c.Request.Context(), sessionID)
	if err != nil {
		if scheduling.HasCode(err, scheduling.CodeSessionExpired) {
			utils.JSONError(c, http.StatusNotFound, "Session not found", "The session has expired and left no transcript.")
			return
		}
		h.Logger.Error("failed to fetch session summary",
			zap.String("sessionID", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch session", err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}
