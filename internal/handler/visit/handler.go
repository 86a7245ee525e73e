package visit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/practice-admin/internal/handler"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/service/visit"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *visit.Service
}

func NewHandler(service *visit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.GET("", h.ListVisits)
		visits.DELETE("/:id", h.DeleteVisit)
	}
}

func (h *Handler) ListVisits(c *gin.Context) {
	filters := &model.VisitFilters{}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = &id
	}
	for key, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid "+key+" date"))
			return
		}
		*dst = &t
	}

	visits, err := h.service.ListVisits(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(visits))
}

// DeleteVisit soft deletes unless ?permanent=true.
func (h *Handler) DeleteVisit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit ID"))
		return
	}
	permanent, _ := strconv.ParseBool(c.DefaultQuery("permanent", "false"))

	if err := h.service.DeleteVisit(c.Request.Context(), handler.CurrentProfile(c), id, permanent); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"id":        id,
		"permanent": permanent,
	}))
}
