package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/payledger/internal/apperrors"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/dto"
	"github.com/SscSPs/payledger/internal/middleware"
)

// maxWebhookBody caps the bytes read from a provider delivery.
const maxWebhookBody = 1 << 20

// webhookHandler handles inbound provider webhooks.
type webhookHandler struct {
	ingest portssvc.WebhookIngestSvc
}

func newWebhookHandler(ingest portssvc.WebhookIngestSvc) *webhookHandler {
	return &webhookHandler{ingest: ingest}
}

// RegisterWebhookRoutes registers the per-provider webhook endpoint.
func RegisterWebhookRoutes(rg *gin.RouterGroup, ingest portssvc.WebhookIngestSvc) {
	h := newWebhookHandler(ingest)
	rg.POST("/:provider", h.receive)
}

// webhookEventHandler serves the stored delivery audit trail.
type webhookEventHandler struct {
	ledger portssvc.WebhookLedgerSvc
}

// RegisterWebhookEventRoutes registers the operator view of stored deliveries.
func RegisterWebhookEventRoutes(rg *gin.RouterGroup, ledger portssvc.WebhookLedgerSvc) {
	h := &webhookEventHandler{ledger: ledger}
	rg.GET("/webhook-events/:rowID", h.getEvent)
}

// receive godoc
// @Summary Receive a payment provider webhook
// @Description Verifies the provider signature over the raw body, claims the event and applies it to the ledger. Replays are acknowledged without effect.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   provider path string true "Provider" Enums(stripe, paypal, flutterwave, paystack)
// @Success 200 {object} dto.WebhookAckResponse
// @Failure 400 {object} dto.ErrorResponse "Unreadable or malformed payload"
// @Failure 401 {object} dto.ErrorResponse "Signature verification failed"
// @Failure 404 {object} dto.ErrorResponse "Unknown provider"
// @Failure 409 {object} dto.ErrorResponse "Event is being processed by another delivery"
// @Failure 500 {object} dto.ErrorResponse "Processing failed, provider should retry"
// @Failure 503 {object} dto.ErrorResponse "Provider secret not configured"
// @Router /webhooks/{provider} [post]
func (h *webhookHandler) receive(c *gin.Context) {
	provider := c.Param("provider")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("provider", provider))

	// The signature covers the exact bytes sent, so the body is read raw and
	// never re-encoded.
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
		return
	}
	if len(rawBody) > maxWebhookBody {
		logger.Warn("Webhook body too large", slog.Int("bytes", len(rawBody)))
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "body too large"})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), provider, c.Request.Header, rawBody)
	if err != nil {
		if errors.Is(err, apperrors.ErrSignature) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid signature"})
			return
		}
		respondError(c, logger, err, "Failed to process webhook")
		return
	}

	if result.InFlight {
		// A non-2xx makes the provider retry once the current claim finishes or its lease expires.
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "event is already being processed"})
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAckResponse{
		Received:  true,
		EventID:   result.EventID,
		Status:    string(result.Status),
		Duplicate: result.Duplicate,
	})
}

// getEvent godoc
// @Summary Get a stored webhook delivery
// @Description Returns the dedup row of one provider event, including status, attempts and the raw payload.
// @Tags webhooks
// @Produce  json
// @Param   rowID path string true "Webhook event row ID"
// @Success 200 {object} dto.WebhookEventResponse
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve webhook event"
// @Security BearerAuth
// @Router /webhook-events/{rowID} [get]
func (h *webhookEventHandler) getEvent(c *gin.Context) {
	rowID := c.Param("rowID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("row_id", rowID))

	event, err := h.ledger.GetEvent(c.Request.Context(), rowID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve webhook event")
		return
	}
	c.JSON(http.StatusOK, dto.ToWebhookEventResponse(event))
}
