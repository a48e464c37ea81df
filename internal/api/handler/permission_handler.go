package handler

import (
	"net/http"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// PermissionHandler 模板授权管理的API处理器（仅管理员路由）
type PermissionHandler struct {
	accessService *service.AccessService
}

func NewPermissionHandler(accessService *service.AccessService) *PermissionHandler {
	return &PermissionHandler{accessService: accessService}
}

type grantRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// List 模板的授权列表
func (h *PermissionHandler) List(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	permissions, err := h.accessService.ListByTemplate(templateID)
	if err != nil {
		handleServiceError(c, err, "failed to list permissions")
		return
	}
	c.JSON(http.StatusOK, model.Success(permissions))
}

// Grant 给用户授予模板访问权（重复授予幂等）
func (h *PermissionHandler) Grant(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	permission, err := h.accessService.Grant(templateID, req.UserID)
	if err != nil {
		handleServiceError(c, err, "failed to grant permission")
		return
	}
	c.JSON(http.StatusCreated, model.Success(permission))
}

// Revoke 撤销用户的模板访问权
func (h *PermissionHandler) Revoke(c *gin.Context) {
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.accessService.Revoke(templateID, userID); err != nil {
		handleServiceError(c, err, "failed to revoke permission")
		return
	}
	c.JSON(http.StatusOK, model.Success(nil))
}
