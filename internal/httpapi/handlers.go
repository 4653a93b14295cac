package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/metrics"
	"github.com/HendryAvila/storykeeper/internal/store"
	"github.com/HendryAvila/storykeeper/internal/tools"
)

type handlers struct {
	engine *knowledge.Engine
	store  *store.Store
	logger *zap.Logger
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type setStateRequest struct {
	CharacterID            int64  `json:"character_id" binding:"required,gt=0"`
	BookID                 int64  `json:"book_id" binding:"required,gt=0"`
	ChapterID              int64  `json:"chapter_id" binding:"required,gt=0"`
	KnowledgeItem          string `json:"knowledge_item" binding:"required"`
	KnowledgeState         string `json:"knowledge_state" binding:"required,oneof=knows knows_with_protection suspects unaware memory_gap"`
	Source                 string `json:"source"`
	ConfidenceLevel        string `json:"confidence_level" binding:"omitempty,oneof=certain probable suspected"`
	CanActOn               *bool  `json:"can_act_on"`
	CanReferenceDirectly   *bool  `json:"can_reference_directly"`
	CanReferenceIndirectly *bool  `json:"can_reference_indirectly"`
	InternalThoughtOK      *bool  `json:"internal_thought_ok"`
	Restrictions           string `json:"restrictions"`
	DialogueRestriction    string `json:"dialogue_restriction"`
}

type canReferenceQuery struct {
	CharacterID   int64  `form:"character_id" binding:"required,gt=0"`
	KnowledgeItem string `form:"knowledge_item" binding:"required"`
	AtChapter     int64  `form:"at_chapter" binding:"required,gt=0"`
}

type validateSceneRequest struct {
	CharacterID  int64  `json:"character_id" binding:"required,gt=0"`
	ChapterID    int64  `json:"chapter_id" binding:"required,gt=0"`
	SceneContent string `json:"scene_content" binding:"required"`
	ContentType  string `json:"content_type" binding:"omitempty,oneof=dialogue internal_thought narration"`
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (h *handlers) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) setState(c *gin.Context) {
	start := time.Now()
	var req setStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, tools.SetKnowledgeStateName, start, bindError(err))
		return
	}

	res, err := h.engine.SetKnowledgeState(c.Request.Context(), knowledge.SetFactParams{
		CharacterID:            req.CharacterID,
		BookID:                 req.BookID,
		ChapterID:              req.ChapterID,
		KnowledgeItem:          req.KnowledgeItem,
		State:                  req.KnowledgeState,
		Source:                 req.Source,
		Confidence:             req.ConfidenceLevel,
		CanActOn:               req.CanActOn,
		CanReferenceDirectly:   req.CanReferenceDirectly,
		CanReferenceIndirectly: req.CanReferenceIndirectly,
		InternalThoughtOK:      req.InternalThoughtOK,
		Restrictions:           req.Restrictions,
		DialogueRestriction:    req.DialogueRestriction,
	})
	if err != nil {
		h.fail(c, tools.SetKnowledgeStateName, start, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	h.ok(c, tools.SetKnowledgeStateName, start, status, res)
}

func (h *handlers) canReference(c *gin.Context) {
	start := time.Now()
	var q canReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, tools.CanReferenceName, start, bindError(err))
		return
	}
	res, err := h.engine.CanReference(c.Request.Context(), q.CharacterID, q.KnowledgeItem, q.AtChapter)
	if err != nil {
		h.fail(c, tools.CanReferenceName, start, err)
		return
	}
	h.ok(c, tools.CanReferenceName, start, http.StatusOK, res)
}

func (h *handlers) state(c *gin.Context) {
	start := time.Now()
	characterID, err := pathID(c, "character_id")
	if err != nil {
		h.fail(c, tools.KnowledgeStateName, start, err)
		return
	}
	chapterID, err := pathID(c, "chapter_id")
	if err != nil {
		h.fail(c, tools.KnowledgeStateName, start, err)
		return
	}
	res, err := h.engine.KnowledgeState(c.Request.Context(), characterID, chapterID)
	if err != nil {
		h.fail(c, tools.KnowledgeStateName, start, err)
		return
	}
	h.ok(c, tools.KnowledgeStateName, start, http.StatusOK, res)
}

func (h *handlers) validateScene(c *gin.Context) {
	start := time.Now()
	var req validateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, tools.ValidateSceneName, start, bindError(err))
		return
	}
	res, err := h.engine.ValidateScene(c.Request.Context(),
		req.CharacterID, req.ChapterID, req.SceneContent, knowledge.ContentType(req.ContentType))
	if err != nil {
		h.fail(c, tools.ValidateSceneName, start, err)
		return
	}
	metrics.RecordFindings(res)
	h.ok(c, tools.ValidateSceneName, start, http.StatusOK, res)
}

func (h *handlers) history(c *gin.Context) {
	start := time.Now()
	characterID, err := pathID(c, "character_id")
	if err != nil {
		h.fail(c, tools.KnowledgeHistoryName, start, err)
		return
	}
	facts, err := h.engine.History(c.Request.Context(), characterID, c.Query("knowledge_item"))
	if err != nil {
		h.fail(c, tools.KnowledgeHistoryName, start, err)
		return
	}
	h.ok(c, tools.KnowledgeHistoryName, start, http.StatusOK, gin.H{
		"character_id": characterID,
		"history":      facts,
	})
}

// ─── Responses ───────────────────────────────────────────────────────────────

func (h *handlers) ok(c *gin.Context, op string, start time.Time, status int, body any) {
	metrics.ObserveOperation(op, metrics.TransportHTTP, start, nil)
	c.JSON(status, body)
}

func (h *handlers) fail(c *gin.Context, op string, start time.Time, err error) {
	metrics.ObserveOperation(op, metrics.TransportHTTP, start, err)
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("operation", op),
			zap.Error(err),
		)
		msg = "internal storage error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case knowledge.IsValidationInput(err):
		return http.StatusBadRequest
	case knowledge.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &knowledge.ValidationInputError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}
