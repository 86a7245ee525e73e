package masterdata

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/practice-admin/internal/email"
	"github.com/jwalitptl/practice-admin/internal/handler"
	"github.com/jwalitptl/practice-admin/internal/model"
	mdservice "github.com/jwalitptl/practice-admin/internal/service/masterdata"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
)

const heartbeatInterval = 30 * time.Second

type Handler struct {
	svc    mdservice.Service
	broker messaging.Broker
	mailer email.Service
}

func NewHandler(svc mdservice.Service, broker messaging.Broker, mailer email.Service) *Handler {
	return &Handler{
		svc:    svc,
		broker: broker,
		mailer: mailer,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	md := r.Group("/masterdata")
	{
		md.GET("", h.ListConfigs)
		md.GET("/:source", h.List)
		md.POST("/:source", h.Create)
		md.PUT("/:source/:id", h.Update)
		md.DELETE("/:source/:id", h.Delete)
		md.POST("/:source/bulk-delete", h.BulkDelete)
		md.GET("/:source/config", h.GetConfig)
		md.GET("/:source/export", h.Export)
		md.POST("/:source/export/email", h.EmailExport)
		md.GET("/:source/events", h.Events)
	}
}

func (h *Handler) ListConfigs(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.svc.Configs()))
}

func (h *Handler) GetConfig(c *gin.Context) {
	ds := c.Param("source")
	cfg, err := h.svc.Config(ds)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	options, err := h.svc.FormOptions(c.Request.Context(), ds)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"config":  cfg,
		"options": options,
	}))
}

// List accepts ?search= plus any exact-match filter as a query parameter.
func (h *Handler) List(c *gin.Context) {
	filter := &model.ListFilter{
		Search:  c.Query("search"),
		Filters: make(map[string]string),
	}
	for key, values := range c.Request.URL.Query() {
		if key == "search" || len(values) == 0 {
			continue
		}
		filter.Filters[key] = values[0]
	}

	rows, err := h.svc.List(c.Request.Context(), c.Param("source"), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rows))
}

func (h *Handler) Create(c *gin.Context) {
	var draft model.Record
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), c.Param("source"), draft)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler) Update(c *gin.Context) {
	var draft model.Record
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), c.Param("source"), c.Param("id"), draft)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

func (h *Handler) Delete(c *gin.Context) {
	rec, err := h.svc.Delete(c.Request.Context(), c.Param("source"), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rec))
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// BulkDelete reports per-id outcomes. Partial failure is still a 200.
func (h *Handler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.svc.BulkDelete(c.Request.Context(), c.Param("source"), req.IDs)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Export(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.svc.Export(c.Request.Context(), &buf, c.Param("source"), c.Query("q"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type emailExportRequest struct {
	To    string `json:"to" binding:"required,email"`
	Query string `json:"q"`
}

func (h *Handler) EmailExport(c *gin.Context) {
	var req emailExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ds := c.Param("source")
	cfg, err := h.svc.Config(ds)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.svc.Export(c.Request.Context(), &buf, ds, req.Query)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if err := h.mailer.SendExport(c.Request.Context(), req.To, cfg.Title, filename, buf.Bytes()); err != nil {
		log.Error().Err(err).Str("source", ds).Msg("Failed to mail export")
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse("failed to send export email"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"filename": filename}))
}

// Events streams change notifications for the source's table as
// server-sent events until the client disconnects.
func (h *Handler) Events(c *gin.Context) {
	cfg, err := h.svc.Config(c.Param("source"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	changes, err := h.broker.Subscribe(ctx, messaging.ChangeChannel(cfg.Table))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", string(msg))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", cfg.Table)
			return true
		}
	})
}
