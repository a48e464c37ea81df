package handler

import (
	"net/http"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// TemplateHandler 病历模板管理的API处理器
type TemplateHandler struct {
	templateService *service.TemplateService
}

func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create 创建模板（含字段和选项，整体原子）
func (h *TemplateHandler) Create(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	template, err := h.templateService.Create(&req)
	if err != nil {
		handleServiceError(c, err, "failed to create template")
		return
	}

	c.JSON(http.StatusCreated, model.Success(template))
}

// List 模板列表（带记录数量）
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List()
	if err != nil {
		handleServiceError(c, err, "failed to list templates")
		return
	}
	c.JSON(http.StatusOK, model.Success(templates))
}

// Get 模板详情（字段按 display_order 排序）
func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.Get(id)
	if err != nil {
		handleServiceError(c, err, "failed to get template")
		return
	}
	c.JSON(http.StatusOK, model.Success(template))
}

// Update 更新模板（字段集合按有无记录分别整体替换或增量对账）
func (h *TemplateHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	template, err := h.templateService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err, "failed to update template")
		return
	}
	c.JSON(http.StatusOK, model.Success(template))
}

// Delete 删除模板（有记录时拒绝）
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.Delete(id); err != nil {
		handleServiceError(c, err, "failed to delete template")
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}
