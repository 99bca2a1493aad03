package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/platform/ctxutil"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

type FormsHandler struct {
	forms services.FormsService
}

func NewFormsHandler(forms services.FormsService) *FormsHandler {
	return &FormsHandler{forms: forms}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// POST /api/subscribe
func (h *FormsHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := h.forms.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			response.RespondInvalid(c, "invalid_subscription", verr.Message, verr.Fields)
			return
		}
		response.RespondAPIError(c, err, "subscribe_failed")
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// POST /api/contact
func (h *FormsHandler) Contact(c *gin.Context) {
	var req services.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sub, msg, err := h.forms.SubmitContact(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			response.RespondInvalid(c, "invalid_contact", verr.Message, verr.Fields)
			return
		}
		response.RespondAPIError(c, err, "contact_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"message":   msg,
		"id":        sub.ID,
		"timestamp": sub.SubmittedAt,
	})
}

func requestMeta(c *gin.Context) map[string]string {
	meta := map[string]string{}
	if ua := c.Request.UserAgent(); ua != "" {
		meta["user_agent"] = ua
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil && td.RequestID != "" {
		meta["request_id"] = td.RequestID
	}
	return meta
}
