package handler

import (
	"net/http"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// FieldHandler 模板字段管理的API处理器
// 所有路由均嵌套在模板之下，访问控制由模板级中间件完成
type FieldHandler struct {
	templateService *service.TemplateService
}

func NewFieldHandler(templateService *service.TemplateService) *FieldHandler {
	return &FieldHandler{templateService: templateService}
}

// List 模板下的字段列表
func (h *FieldHandler) List(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fields, err := h.templateService.ListFields(templateID)
	if err != nil {
		handleServiceError(c, err, "failed to list fields")
		return
	}
	c.JSON(http.StatusOK, model.Success(fields))
}

// Create 向模板追加字段
func (h *FieldHandler) Create(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.FieldInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	field, err := h.templateService.AddField(templateID, &req)
	if err != nil {
		handleServiceError(c, err, "failed to create field")
		return
	}
	c.JSON(http.StatusCreated, model.Success(field))
}

// Update 更新字段（选项增量对账，被引用的选项禁止删除）
func (h *FieldHandler) Update(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseIDParam(c, "fieldId")
	if !ok {
		return
	}

	var req service.FieldInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	field, err := h.templateService.UpdateField(templateID, fieldID, &req)
	if err != nil {
		handleServiceError(c, err, "failed to update field")
		return
	}
	c.JSON(http.StatusOK, model.Success(field))
}

// Delete 删除字段（仍被值引用时拒绝）
func (h *FieldHandler) Delete(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fieldID, ok := parseIDParam(c, "fieldId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteField(templateID, fieldID); err != nil {
		handleServiceError(c, err, "failed to delete field")
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}
