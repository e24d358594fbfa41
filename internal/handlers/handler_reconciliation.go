package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
	"github.com/SscSPs/payledger/internal/dto"
	"github.com/SscSPs/payledger/internal/middleware"
)

// reconciliationHandler handles the reconciliation trigger and read endpoints.
type reconciliationHandler struct {
	reconciliation portssvc.ReconciliationSvcFacade
	defaultLimit   int
	maxLimit       int
}

func newReconciliationHandler(svc portssvc.ReconciliationSvcFacade, defaultLimit, maxLimit int) *reconciliationHandler {
	if maxLimit <= 0 {
		maxLimit = services.MaxReconcileLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(services.DefaultReconcileLimit, maxLimit)
	}
	return &reconciliationHandler{reconciliation: svc, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// RegisterReconcileTriggerRoutes registers the machine-triggered run endpoint.
// The caller protects rg with the shared secret.
func RegisterReconcileTriggerRoutes(rg *gin.RouterGroup, svc portssvc.ReconciliationSvcFacade, defaultLimit, maxLimit int) {
	h := newReconciliationHandler(svc, defaultLimit, maxLimit)
	rg.POST("/run", h.triggerRun)
}

// RegisterReconciliationRoutes registers the operator read endpoints.
func RegisterReconciliationRoutes(rg *gin.RouterGroup, svc portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(svc, 0, 0)

	recon := rg.Group("/reconciliation")
	{
		recon.GET("/runs/:runID", h.getRun)
		recon.GET("/issues", h.listIssues)
		recon.GET("/issues/:issueKey", h.getIssue)
	}
}

// triggerRun godoc
// @Summary Run ledger reconciliation
// @Description Scans recent source records for missing journals, heals them unless dryRun is set and records issues.
// @Tags reconciliation
// @Produce  json
// @Param   limit query int false "Rows per category (clamped to 1..1000, default 200)"
// @Param   dryRun query bool false "Detect only, never write journals or resolve issues"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid shared secret"
// @Failure 503 {object} dto.ErrorResponse "Secret not configured or ledger unavailable"
// @Security SharedSecret
// @Router /internal/reconciliation/run [post]
func (h *reconciliationHandler) triggerRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var body dto.ReconcileRequest
	if c.Request.ContentLength > 0 {
		// A body that does not parse is ignored; the parameters are optional.
		if err := c.ShouldBindJSON(&body); err != nil {
			logger.Debug("Ignoring unparseable reconcile body", slog.String("error", err.Error()))
		}
	}

	limit := h.parseLimit(c.Query("limit"), body.Limit)
	dryRun := parseBool(c.Query("dryRun"), body.DryRun)
	logger = logger.With(slog.Int("limit", limit), slog.Bool("dry_run", dryRun))
	logger.Info("Received reconciliation trigger")

	run, err := h.reconciliation.Run(c.Request.Context(), portssvc.RunOptions{
		Limit:         limit,
		DryRun:        dryRun,
		TriggerSource: services.TriggerHTTP,
	})
	if err != nil {
		respondError(c, logger, err, "Reconciliation failed")
		return
	}

	logger.Info("Reconciliation completed", slog.String("run_id", run.ID), slog.Int("issues", run.Issues), slog.Int("auto_healed", run.AutoHealed))
	c.JSON(http.StatusOK, dto.ToReconcileResponse(run))
}

// parseLimit prefers the query parameter over the body; anything that is not
// an integer falls back to the default, and the result is clamped.
func (h *reconciliationHandler) parseLimit(raw string, fromBody *int) int {
	limit := h.defaultLimit
	if raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			limit = n
		}
	} else if fromBody != nil {
		limit = *fromBody
	}
	return max(1, min(limit, h.maxLimit))
}

func parseBool(raw string, fromBody *bool) bool {
	if raw != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		return err == nil && b
	}
	return fromBody != nil && *fromBody
}

// getRun godoc
// @Summary Get a reconciliation run
// @Tags reconciliation
// @Produce  json
// @Param   runID path string true "Run ID"
// @Success 200 {object} dto.RunResponse
// @Failure 404 {object} dto.ErrorResponse "Run not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve run"
// @Security BearerAuth
// @Router /reconciliation/runs/{runID} [get]
func (h *reconciliationHandler) getRun(c *gin.Context) {
	runID := c.Param("runID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("run_id", runID))

	run, err := h.reconciliation.GetRun(c.Request.Context(), runID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve run")
		return
	}
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// listIssues godoc
// @Summary List reconciliation issues
// @Description Newest first, paginated with an opaque token.
// @Tags reconciliation
// @Produce  json
// @Param   status query string false "open or resolved"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListIssuesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list issues"
// @Security BearerAuth
// @Router /reconciliation/issues [get]
func (h *reconciliationHandler) listIssues(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListIssuesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid issue list parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	issues, next, err := h.reconciliation.ListIssues(c.Request.Context(), domain.IssueStatus(params.Status), params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list issues")
		return
	}
	c.JSON(http.StatusOK, dto.ToListIssuesResponse(issues, next))
}

// getIssue godoc
// @Summary Get a reconciliation issue
// @Tags reconciliation
// @Produce  json
// @Param   issueKey path string true "Issue key, e.g. missing_payout_journal:payout:po_1"
// @Success 200 {object} dto.IssueResponse
// @Failure 404 {object} dto.ErrorResponse "Issue not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve issue"
// @Security BearerAuth
// @Router /reconciliation/issues/{issueKey} [get]
func (h *reconciliationHandler) getIssue(c *gin.Context) {
	issueKey := c.Param("issueKey")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("issue_key", issueKey))

	issue, err := h.reconciliation.GetIssue(c.Request.Context(), issueKey)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve issue")
		return
	}
	c.JSON(http.StatusOK, dto.ToIssueResponse(*issue))
}
