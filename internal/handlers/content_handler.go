package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exercise-service/internal/generator"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// CreateContent stores a content instance
// @Summary Create content
// @Description The body is the content itself; its "kind" selects the exercise type
// @Tags contents
// @Accept json
// @Produce json
// @Success 201 {object} services.ContentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /contents [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	h.LogRequest(c, "Creating content")

	raw, err := c.GetRawData()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	content, err := h.contentService.Create(c.Request.Context(), raw)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, content)
}

// GetContent
// @Router /contents/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	content, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// ListContents lists stored content
// @Param kind query string false "Exercise kind"
// @Param topic query string false "Topic (substring match)"
// @Param language query string false "Language code"
// @Param source query string false "static or generated"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Router /contents [get]
func (h *ContentHandler) ListContents(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.ContentFilters{
		Topic:     c.Query("topic"),
		Language:  c.Query("language"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if kind := models.ExerciseKind(c.Query("kind")); kind != "" {
		if !kind.IsValid() {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid kind", nil, string(kind))
			return
		}
		filters.Kind = &kind
	}
	if source := models.ContentSource(c.Query("source")); source != "" {
		filters.Source = &source
	}

	contents, total, err := h.contentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   contents,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// DeleteContent
// @Router /contents/{id} [delete]
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateContent generates and stores one content instance
// @Param request body generator.Options true "Generation options"
// @Success 201 {object} services.ContentResponse
// @Failure 502 {object} ErrorResponse
// @Router /contents/generate [post]
func (h *ContentHandler) GenerateContent(c *gin.Context) {
	h.LogRequest(c, "Generating content")

	var opts generator.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	content, err := h.contentService.Generate(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, content)
}

// GenerateContentBatch generates a difficulty-ramped batch
// @Param request body generator.Options true "Generation options"
// @Success 201 {object} services.BatchResponse
// @Router /contents/generate/batch [post]
func (h *ContentHandler) GenerateContentBatch(c *gin.Context) {
	h.LogRequest(c, "Generating content batch")

	var opts generator.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	batch, err := h.contentService.GenerateBatch(c.Request.Context(), opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, batch)
}
