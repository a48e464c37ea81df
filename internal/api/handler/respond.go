package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// handleServiceError 领域错误到HTTP状态码的统一映射
// NotFound -> 404, Forbidden -> 403, 其余领域错误 -> 422, 意外错误 -> 500
func handleServiceError(c *gin.Context, err error, context string) {
	var nf *service.NotFoundError
	var fb *service.ForbiddenError

	switch {
	case errors.As(err, &nf):
		model.HandleError(c, http.StatusNotFound, err, context)
	case errors.As(err, &fb):
		model.HandleError(c, http.StatusForbidden, err, context)
	case service.IsDomainError(err):
		model.HandleError(c, http.StatusUnprocessableEntity, err, context)
	default:
		model.HandleError(c, http.StatusInternalServerError, err, context)
	}
}

// parseIDParam 解析路径中的数字ID参数
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid "+name+" parameter"))
		return 0, false
	}
	return uint(id), true
}
