package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/thanhnp/moralis-gateway/internal/metrics"
	"github.com/thanhnp/moralis-gateway/internal/models"
	"github.com/thanhnp/moralis-gateway/internal/moralis"
)

// Forwarder performs the upstream call
type Forwarder interface {
	Get(ctx context.Context, target string, params models.Params) (json.RawMessage, error)
}

// MoralisHandler handles the Moralis pass-through API requests
type MoralisHandler struct {
	forwarder Forwarder
	baseURL   string
	logger    zerolog.Logger
}

// NewMoralisHandler creates a new MoralisHandler. baseURL must end in "/".
func NewMoralisHandler(forwarder Forwarder, baseURL string, logger zerolog.Logger) *MoralisHandler {
	return &MoralisHandler{
		forwarder: forwarder,
		baseURL:   baseURL,
		logger:    logger.With().Str("component", "moralis_handler").Logger(),
	}
}

// GetWalletBalance returns the ERC-20 balances of a wallet
// GET /moralis/get_wallet_balance
func (h *MoralisHandler) GetWalletBalance(c *gin.Context) {
	h.forward(c, moralis.WalletBalance)
}

// GetWalletTransfers returns the ERC-20 transfer history of a wallet
// GET /moralis/get_wallet_transfers
func (h *MoralisHandler) GetWalletTransfers(c *gin.Context) {
	h.forward(c, moralis.WalletTransfers)
}

// GetContractTransfers returns the transfer history of an ERC-20 contract
// GET /moralis/get_contract_transfers
func (h *MoralisHandler) GetContractTransfers(c *gin.Context) {
	h.forward(c, moralis.ContractTransfers)
}

// Handle returns a handler forwarding to op
func (h *MoralisHandler) Handle(op moralis.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.forward(c, op)
	}
}

func (h *MoralisHandler) forward(c *gin.Context, op moralis.Operation) {
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, op, fmt.Errorf("%w: %w", models.ErrInvalidBody, err))
		return
	}

	address, err := models.SanitizeAddress(req.Address)
	if err != nil {
		h.writeError(c, op, err)
		return
	}

	target, err := op.URL(h.baseURL, address)
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	params := req.Options.Normalize()

	start := time.Now()
	body, err := h.forwarder.Get(c.Request.Context(), target, params)
	metrics.UpstreamLatency.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(string(op), metrics.OutcomeError).Inc()
		h.writeError(c, op, err)
		return
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(string(op), metrics.OutcomeOK).Inc()

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// writeError maps an error to its fixed caller-facing response
func (h *MoralisHandler) writeError(c *gin.Context, op moralis.Operation, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		h.logger.Debug().Err(err).Str("operation", string(op)).Msg("Rejected request")
		msg := err.Error()
		if errors.Is(err, models.ErrInvalidBody) {
			// decoder detail stays in the log
			msg = models.ErrInvalidBody.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, moralis.ErrUpstream):
		h.logger.Warn().Err(err).Str("operation", string(op)).Msg("Upstream call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": moralis.ErrUpstream.Error()})
	default:
		h.logger.Error().Err(err).Str("operation", string(op)).Msg("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
