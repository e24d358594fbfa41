package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/dto"
	"github.com/SscSPs/payledger/internal/middleware"
)

// journalHandler handles the read-only journal endpoints. Journals are only
// ever written by the flow recorders.
type journalHandler struct {
	journalService portssvc.JournalReaderSvc
}

func newJournalHandler(journalService portssvc.JournalReaderSvc) *journalHandler {
	return &journalHandler{journalService: journalService}
}

// RegisterJournalRoutes registers routes related to journals.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalReaderSvc) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.GET("", h.listJournalsBySource)
		journals.GET("/:journalID", h.getJournal)
	}
}

// getJournal godoc
// @Summary Get a journal entry
// @Description Retrieves a journal with its postings and per-account balance effects
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve journal"
// @Security BearerAuth
// @Router /journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	journalID := c.Param("journalID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", journalID))

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), journalID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournalsBySource godoc
// @Summary List journals for a source record
// @Tags journals
// @Produce  json
// @Param   sourceKind query string true "transaction, tip, payout or credit_purchase"
// @Param   sourceId query string true "Source record ID"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journals"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournalsBySource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid journal list parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	journals, err := h.journalService.ListJournalsBySource(c.Request.Context(), domain.SourceKind(params.SourceKind), params.SourceID)
	if err != nil {
		respondError(c, logger, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListJournalsResponse(journals))
}
