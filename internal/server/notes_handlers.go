package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	messageSaved           = "Note saved successfully"
	messageUpdated         = "Note updated successfully"
	messageDeleted         = "Note deleted successfully"
	errorCreateValidation  = "Name and code are required"
	errorUpdateValidation  = "ID, Name, and Code are required"
	errorDeleteValidation  = "ID is required"
	errorNotFound          = "Note not found"
	errorInvalidBody       = "Request body must be valid JSON"
	errorBodyTooLarge      = "Request body exceeds the size limit"
	operationCreate        = "create"
	operationUpdate        = "update"
	operationDelete        = "delete"
	noteIDParam            = "id"
	internalErrorLogPrefix = "notes request failed"
)

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request api.SaveRequest
	if !h.bindJSON(c, &request) {
		return
	}

	draft := request.Draft()
	if err := draft.Validate(); err != nil {
		h.respondError(c, http.StatusBadRequest, errorCreateValidation)
		return
	}

	id, err := h.notesService.Create(c.Request.Context(), draft)
	if err != nil {
		h.respondServiceError(c, err, errorCreateValidation)
		return
	}

	h.publishChange(operationCreate, id)
	c.JSON(http.StatusOK, api.SaveResponse{Message: messageSaved, ID: id.Int64()})
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	records, err := h.notesService.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}

	payload := make([]api.Note, 0, len(records))
	for _, record := range records {
		payload = append(payload, api.NewNote(record))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	id, ok := parseNoteIDParam(c.Param(noteIDParam))
	if !ok {
		h.respondError(c, http.StatusNotFound, errorNotFound)
		return
	}

	record, err := h.notesService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, api.NewNote(record))
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	var request api.UpdateRequest
	if !h.bindJSON(c, &request) {
		return
	}

	rawID, ok := request.ID.Value()
	draft := request.Draft()
	if !ok || draft.Validate() != nil {
		h.respondError(c, http.StatusBadRequest, errorUpdateValidation)
		return
	}
	id, err := notes.NewNoteID(rawID)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, errorUpdateValidation)
		return
	}

	if err := h.notesService.Update(c.Request.Context(), id, draft); err != nil {
		h.respondServiceError(c, err, errorUpdateValidation)
		return
	}

	h.publishChange(operationUpdate, id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: messageUpdated})
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	var request api.DeleteRequest
	if !h.bindJSON(c, &request) {
		return
	}

	rawID, ok := request.ID.Value()
	if !ok {
		h.respondError(c, http.StatusBadRequest, errorDeleteValidation)
		return
	}
	id, err := notes.NewNoteID(rawID)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, errorDeleteValidation)
		return
	}

	if err := h.notesService.Delete(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err, errorDeleteValidation)
		return
	}

	h.publishChange(operationDelete, id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: messageDeleted})
}

func (h *httpHandler) bindJSON(c *gin.Context, target any) bool {
	err := c.ShouldBindJSON(target)
	if err == nil || errors.Is(err, io.EOF) {
		// An empty body binds as an empty document.
		return true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondError(c, http.StatusRequestEntityTooLarge, errorBodyTooLarge)
		return false
	}
	h.logger.Debug("request body rejected", zap.Error(err))
	h.respondError(c, http.StatusBadRequest, errorInvalidBody)
	return false
}

func (h *httpHandler) respondServiceError(c *gin.Context, err error, validationMessage string) {
	switch {
	case errors.Is(err, notes.ErrValidation):
		h.respondError(c, http.StatusBadRequest, validationMessage)
	case errors.Is(err, notes.ErrNotFound):
		h.respondError(c, http.StatusNotFound, errorNotFound)
	default:
		_ = c.Error(err)
		h.logger.Error(internalErrorLogPrefix, zap.String("path", c.FullPath()), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *httpHandler) respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: message})
}

func (h *httpHandler) publishChange(operation string, id notes.NoteID) {
	h.realtime.Publish(RealtimeMessage{
		EventType: api.EventNoteChanged,
		Operation: operation,
		NoteIDs:   []int64{id.Int64()},
		Timestamp: h.options.Clock().UTC(),
	})
}

func parseNoteIDParam(raw string) (notes.NoteID, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	id, err := notes.NewNoteID(value)
	if err != nil {
		return 0, false
	}
	return id, true
}
