package http

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/intake/internal/application/insights"
	"github.com/orderflow/intake/internal/application/intake"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
	"github.com/orderflow/intake/pkg/errors"
	ordertypes "github.com/orderflow/intake/pkg/types/order"
)

// maxUploadBytes caps the accepted size of an uploaded email file.
const maxUploadBytes = 1 << 20

// Handler bundles the API's dependencies.
type Handler struct {
	service    *intake.Service
	aggregator *insights.Aggregator
	logger     logging.Logger
	now        func() time.Time
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithNow injects the clock used to stamp receipt times on uploads.
func WithNow(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// NewHandler builds the API handler set.
func NewHandler(service *intake.Service, aggregator *insights.Aggregator, logger logging.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &Handler{service: service, aggregator: aggregator, logger: logger.Named("handler"), now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ProcessEmail handles POST /api/v1/intake/email.
func (h *Handler) ProcessEmail(c *gin.Context) {
	var req ordertypes.ProcessEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidParam("invalid request body").WithCause(err))
		return
	}

	o, err := h.service.ProcessEmail(c.Request.Context(), intake.Email{
		RawContent: req.RawContent,
		Sender:     req.Sender,
		Subject:    req.Subject,
		ReceivedAt: req.ReceivedAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.aggregator.Add(o)
	c.JSON(http.StatusOK, o)
}

// UploadEmail handles POST /api/v1/intake/upload: a multipart file whose
// content is treated as the raw email body. Sender and subject come from
// form fields; the receipt time comes from the received_at form field
// (RFC3339) or, when absent, the handler's clock. Receipt time feeds the
// order ID, so it must always be set or every upload would share the
// ORD-TEMP sentinel and overwrite the previous one.
func (h *Handler) UploadEmail(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, errors.InvalidParam("file field is required").WithCause(err))
		return
	}
	if file.Size > maxUploadBytes {
		writeError(c, errors.InvalidParam("file exceeds the 1MB limit"))
		return
	}

	f, err := file.Open()
	if err != nil {
		writeError(c, errors.Wrap(err, errors.ErrCodeInternal, "open uploaded file"))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		writeError(c, errors.Wrap(err, errors.ErrCodeInternal, "read uploaded file"))
		return
	}

	receivedAt := h.now()
	if v := c.PostForm("received_at"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, errors.InvalidParam("received_at must be RFC3339").WithCause(err))
			return
		}
		receivedAt = ts
	}

	o, err := h.service.ProcessEmail(c.Request.Context(), intake.Email{
		RawContent: string(raw),
		Sender:     c.PostForm("sender"),
		Subject:    c.PostForm("subject"),
		ReceivedAt: &receivedAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.aggregator.Add(o)
	c.JSON(http.StatusOK, o)
}

// ListOrders handles GET /api/v1/orders.
func (h *Handler) ListOrders(c *gin.Context) {
	all, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": all, "count": len(all)})
}

// GetOrder handles GET /api/v1/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ApproveOrder handles POST /api/v1/orders/:id/approve.
func (h *Handler) ApproveOrder(c *gin.Context) {
	o, err := h.service.ApproveOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// MergeOrders handles POST /api/v1/orders/merge.
func (h *Handler) MergeOrders(c *gin.Context) {
	var req ordertypes.MergeOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidParam("invalid request body").WithCause(err))
		return
	}

	merged, err := h.aggregator.Merge(req.OrderIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, merged)
}

// CommonProducts handles GET /api/v1/insights/common-products.
func (h *Handler) CommonProducts(c *gin.Context) {
	minOccurrences := queryInt(c, "min_occurrences", insights.DefaultMinPairOccurrences)
	c.JSON(http.StatusOK, gin.H{"common_products": h.aggregator.CommonProducts(minOccurrences)})
}

// CustomerPatterns handles GET /api/v1/insights/customer-patterns.
func (h *Handler) CustomerPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"customer_insights": h.aggregator.CustomerInsights()})
}

// TimeBased handles GET /api/v1/insights/time-based.
func (h *Handler) TimeBased(c *gin.Context) {
	days := queryInt(c, "days", insights.DefaultPeriodDays)
	c.JSON(http.StatusOK, h.aggregator.TimeBasedInsights(days))
}

// ExportInsights handles GET /api/v1/insights/export.
func (h *Handler) ExportInsights(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.Export())
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// writeError maps an error to the uniform error body using its domain code.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	body := ordertypes.ErrorResponse{
		Code:    string(code),
		Message: errors.DefaultMessageForCode(code),
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), body)
}
