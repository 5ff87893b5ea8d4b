package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/services"
)

type WebhooksHandler struct {
	webhooks *services.WebhookService
}

func NewWebhooksHandler(webhooks *services.WebhookService) *WebhooksHandler {
	return &WebhooksHandler{webhooks: webhooks}
}

// POST /api/webhooks
func (h *WebhooksHandler) Create(c *gin.Context) {
	var input services.WebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_body", err)
		return
	}
	hook, err := h.webhooks.Create(c.Request.Context(), input)
	if err != nil {
		RespondError(c, statusFor(err), "create_webhook_failed", err)
		return
	}
	RespondCreated(c, gin.H{"webhook": hook})
}

// GET /api/webhooks
func (h *WebhooksHandler) List(c *gin.Context) {
	hooks, err := h.webhooks.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_webhooks_failed", err)
		return
	}
	RespondOK(c, gin.H{"webhooks": hooks})
}

// GET /api/webhooks/:id
func (h *WebhooksHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_id", err)
		return
	}
	hook, err := h.webhooks.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, statusFor(err), "webhook_not_found", err)
		return
	}
	RespondOK(c, gin.H{"webhook": hook})
}

// PUT /api/webhooks/:id
func (h *WebhooksHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_id", err)
		return
	}
	var input services.WebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_body", err)
		return
	}
	hook, err := h.webhooks.Update(c.Request.Context(), id, input)
	if err != nil {
		RespondError(c, statusFor(err), "update_webhook_failed", err)
		return
	}
	RespondOK(c, gin.H{"webhook": hook})
}

// DELETE /api/webhooks/:id
func (h *WebhooksHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_id", err)
		return
	}
	if err := h.webhooks.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, statusFor(err), "delete_webhook_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// GET /api/webhooks/:id/deliveries
func (h *WebhooksHandler) ListDeliveries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_id", err)
		return
	}
	deliveries, err := h.webhooks.ListDeliveries(c.Request.Context(), id, intQuery(c, "limit", 25))
	if err != nil {
		RespondError(c, statusFor(err), "list_deliveries_failed", err)
		return
	}
	RespondOK(c, gin.H{"deliveries": deliveries})
}

// POST /api/webhooks/:id/test
func (h *WebhooksHandler) Test(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_webhook_id", err)
		return
	}
	result, err := h.webhooks.Test(c.Request.Context(), id)
	if err != nil {
		RespondError(c, statusFor(err), "test_webhook_failed", err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}
