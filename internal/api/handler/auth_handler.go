package handler

import (
	"net/http"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证相关的API处理器
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, model.Success(user))
}

// Login 用户登录，返回JWT和用户信息
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Error(400, "invalid request body: "+err.Error()))
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, model.Success(gin.H{
		"token": token,
		"user":  user,
	}))
}
