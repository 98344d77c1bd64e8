package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/suPer8Hu/debate-platform/internal/common"
	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/httpapi/middleware"
	"github.com/suPer8Hu/debate-platform/internal/llm"
)

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// failDomain translates the core error taxonomy to API codes. This is the
// single boundary where DomainError/ProviderError become wire shapes.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.Fail(c, http.StatusNotFound, 40004, "conversation not found")
	case debate.IsKind(err, debate.KindConversationClosed):
		common.Fail(c, http.StatusConflict, 40901, debate.AfterEndMessage)
	case debate.IsKind(err, debate.KindInvalidMessage):
		common.Fail(c, http.StatusUnprocessableEntity, 42201, err.Error())
	case debate.IsKind(err, debate.KindMalformedHistory):
		common.Fail(c, http.StatusUnprocessableEntity, 42202, err.Error())
	case llm.IsCause(err, llm.CauseAllExhausted):
		common.Fail(c, http.StatusServiceUnavailable, 50301, "generation unavailable, try again")
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

type startDebateReq struct {
	Message    string `json:"message" binding:"required"`
	Difficulty string `json:"difficulty"`
}

func (h *Handler) StartDebate(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req startDebateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	res, err := h.DebateSvc.Start(c.Request.Context(), uid, req.Message, req.Difficulty)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.OK(c, gin.H{
		"conversation_id": res.ConversationID,
		"thesis":          res.Thesis,
		"difficulty":      res.Difficulty,
		"reply":           res.Reply,
	})
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	res, err := h.DebateSvc.Continue(c.Request.Context(), uid, c.Param("conversation_id"), req.Message)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.OK(c, gin.H{
		"conversation_id":    res.ConversationID,
		"reply":              res.Reply,
		"conceded":           res.Conceded,
		"concession_checked": res.ConcessionChecked,
	})
}

func (h *Handler) ListMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	var beforeID uint64
	if v := c.Query("before_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.DebateSvc.ListMessages(c.Request.Context(), uid, c.Param("conversation_id"), limit, beforeID)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

type sendMessageAsyncReq struct {
	Message        string  `json:"message" binding:"required"`
	IdempotencyKey *string `json:"idempotency_key"`
}

func (h *Handler) SendMessageAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Publisher == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50302, "async jobs disabled")
		return
	}

	var req sendMessageAsyncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	job, created, err := h.DebateSvc.EnqueueTurn(c.Request.Context(), uid, c.Param("conversation_id"), req.Message, req.IdempotencyKey)
	if err != nil {
		failDomain(c, err)
		return
	}
	if created {
		if err := h.Publisher.PublishJob(c.Request.Context(), job.ID); err != nil {
			common.Fail(c, http.StatusServiceUnavailable, 50303, "failed to enqueue job")
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "ok",
		"data":    gin.H{"job_id": job.ID, "status": job.Status},
	})
}

func (h *Handler) GetJob(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	job, err := h.DebateSvc.GetJob(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	if job.UserID != uid {
		common.Fail(c, http.StatusNotFound, 40004, "job not found")
		return
	}
	common.OK(c, gin.H{
		"job_id":            job.ID,
		"status":            job.Status,
		"result_message_id": job.ResultMessageID,
		"error":             job.Error,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}
