package handler

import (
	"net/http"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 概览统计的API处理器
type DashboardHandler struct {
	templateRepo *repository.TemplateRepository
	recordRepo   *repository.RecordRepository
}

func NewDashboardHandler(templateRepo *repository.TemplateRepository, recordRepo *repository.RecordRepository) *DashboardHandler {
	return &DashboardHandler{
		templateRepo: templateRepo,
		recordRepo:   recordRepo,
	}
}

// Counts 模板与记录总数
func (h *DashboardHandler) Counts(c *gin.Context) {
	templates, err := h.templateRepo.Count()
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "failed to count templates")
		return
	}

	records, err := h.recordRepo.Count()
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "failed to count records")
		return
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"templates": templates,
		"records":   records,
	}))
}
