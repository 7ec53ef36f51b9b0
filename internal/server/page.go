package server

import (
	"bytes"
	"net/http"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleListPage renders the note list as HTML, filtered by the q parameter.
func (h *httpHandler) handleListPage(c *gin.Context) {
	records, err := h.notesService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list page query failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load notes")
		return
	}

	all := make([]api.Note, 0, len(records))
	for _, record := range records {
		all = append(all, api.NewNote(record))
	}
	query := c.Query("q")

	var buffer bytes.Buffer
	page := view.Page{
		Title: h.options.PageTitle,
		Query: query,
		Cards: view.NewCards(view.Filter(all, query), nil),
	}
	if err := view.RenderPage(&buffer, page); err != nil {
		h.logger.Error("list page render failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render notes")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buffer.Bytes())
}
