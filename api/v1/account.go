package v1

import (
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AccountHandler 注册、登录与令牌
type AccountHandler struct {
	authService service.AuthService
}

// NewAccountHandler 创建账户处理器实例
func NewAccountHandler(authService service.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Register 注册路由，r为 /account 分组
func (h *AccountHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	r.POST("/register", h.SignUp)
	r.POST("/login", h.Login)
	r.POST("/wechat", h.WechatLogin)
	r.POST("/refresh", h.Refresh)

	r.POST("/logout", authMiddleware.Required(), h.Logout)
	r.GET("/myinfo", authMiddleware.Required(), h.MyInfo)
}

// SignUp 注册
func (h *AccountHandler) SignUp(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "注册失败")
		return
	}
	middleware.SetAuditSubject(c, resp.User.UUID)
	api.Created(c, resp)
}

// Login 邮箱或手机号登录
func (h *AccountHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "登录失败")
		return
	}
	middleware.SetAuditSubject(c, resp.User.UUID)
	api.Success(c, resp)
}

// WechatLogin 小程序登录
func (h *AccountHandler) WechatLogin(c *gin.Context) {
	var req model.WechatLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.WechatLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "微信登录失败")
		return
	}
	middleware.SetAuditSubject(c, resp.User.UUID)
	api.Success(c, resp)
}

// Refresh 刷新访问令牌
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err, "刷新令牌失败")
		return
	}
	api.Success(c, resp)
}

// logoutRequest 注销时可一并注销刷新令牌
type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout 注销
func (h *AccountHandler) Logout(c *gin.Context) {
	var req logoutRequest
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c), req.Refresh); err != nil {
		respondError(c, err, "注销失败")
		return
	}
	api.Success(c, nil)
}

// MyInfo 当前用户信息
func (h *AccountHandler) MyInfo(c *gin.Context) {
	info, err := h.authService.MyInfo(c.Request.Context(), middleware.MustGetPrincipal(c))
	if err != nil {
		respondError(c, err, "获取用户信息失败")
		return
	}
	api.Success(c, info)
}
