package handler

import (
	"net/http"
	"strconv"

	"github.com/HadiHz88/medical-records-api/internal/api/middleware"
	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// RecordHandler 病历记录管理的API处理器
// 记录路由不带模板路径参数，访问控制在各方法内完成：
// 创建按请求体中的 template_id 检查，其余按记录所属模板检查
type RecordHandler struct {
	recordService *service.RecordService
	accessService *service.AccessService
}

func NewRecordHandler(recordService *service.RecordService, accessService *service.AccessService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		accessService: accessService,
	}
}

// checkTemplateAccess 检查当前用户对模板的访问权，拒绝时已写入响应
func (h *RecordHandler) checkTemplateAccess(c *gin.Context, templateID uint) bool {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(401, "missing user identity"))
		return false
	}

	allowed, err := h.accessService.CanAccess(principal, templateID)
	if err != nil {
		model.HandleError(c, http.StatusInternalServerError, err, "failed to check template access")
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, model.Error(403, "you do not have access to this template"))
		return false
	}
	return true
}

// Create 创建记录（全量校验后原子写入）
func (h *RecordHandler) Create(c *gin.Context) {
	var req service.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	// 访问检查在任何写入之前
	if !h.checkTemplateAccess(c, req.TemplateID) {
		return
	}

	record, err := h.recordService.Create(&req)
	if err != nil {
		handleServiceError(c, err, "failed to create record")
		return
	}
	c.JSON(http.StatusCreated, model.Success(record))
}

// List 记录列表，支持 template_id 过滤
// 普通用户必须带过滤并持有对应模板的授权，管理员可不带过滤查看全部
func (h *RecordHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(401, "missing user identity"))
		return
	}

	var templateID uint
	if raw := c.Query("template_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Error(400, "invalid template_id parameter"))
			return
		}
		templateID = uint(parsed)
	}

	if templateID == 0 {
		if !principal.IsAdmin {
			c.JSON(http.StatusForbidden, model.Error(403, "template_id filter is required for non-admin users"))
			return
		}
	} else if !h.checkTemplateAccess(c, templateID) {
		return
	}

	records, err := h.recordService.List(templateID)
	if err != nil {
		handleServiceError(c, err, "failed to list records")
		return
	}
	c.JSON(http.StatusOK, model.Success(records))
}

// Get 记录详情（含模板、值、字段、选项、多选项）
func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.recordService.Get(id)
	if err != nil {
		handleServiceError(c, err, "failed to get record")
		return
	}

	if !h.checkTemplateAccess(c, record.TemplateID) {
		return
	}
	c.JSON(http.StatusOK, model.Success(record))
}

// Update 更新记录（提交即全量，缺席的既有值被删除）
func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := h.recordService.Get(id)
	if err != nil {
		handleServiceError(c, err, "failed to get record")
		return
	}
	if !h.checkTemplateAccess(c, existing.TemplateID) {
		return
	}

	var req service.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	record, err := h.recordService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err, "failed to update record")
		return
	}
	c.JSON(http.StatusOK, model.Success(record))
}

// Delete 删除记录及其全部值
func (h *RecordHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := h.recordService.Get(id)
	if err != nil {
		handleServiceError(c, err, "failed to get record")
		return
	}
	if !h.checkTemplateAccess(c, existing.TemplateID) {
		return
	}

	if err := h.recordService.Delete(id); err != nil {
		handleServiceError(c, err, "failed to delete record")
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}

// ListValues 记录下的值列表
func (h *RecordHandler) ListValues(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.recordService.Get(id)
	if err != nil {
		handleServiceError(c, err, "failed to get record")
		return
	}
	if !h.checkTemplateAccess(c, record.TemplateID) {
		return
	}

	values, err := h.recordService.ListValues(id)
	if err != nil {
		handleServiceError(c, err, "failed to list record values")
		return
	}
	c.JSON(http.StatusOK, model.Success(values))
}
