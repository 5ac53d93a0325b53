package v1

import (
	"errors"
	"net/http"

	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/gin-gonic/gin"
)

// errorMapping 业务错误对应的状态码和提示
type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "账号或密码错误"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Token无效或已过期"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "Token无效或已过期"},
	{service.ErrTokenRevoked, http.StatusUnauthorized, "Token已注销"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "未认证或用户不存在"},
	{service.ErrForbidden, http.StatusForbidden, "您没有执行此操作的权限"},
	{service.ErrSuperAdminRequired, http.StatusForbidden, "需要超级管理员权限"},
	{service.ErrResolverFailure, http.StatusServiceUnavailable, "权限服务暂不可用"},
	{service.ErrAccountExists, http.StatusConflict, "邮箱或手机号已注册"},
	{service.ErrAccountRequired, http.StatusBadRequest, "邮箱和手机号至少填写一个"},
	{service.ErrWechatLogin, http.StatusBadGateway, "微信登录失败"},

	{service.ErrUserNotFound, http.StatusNotFound, "用户不存在"},
	{service.ErrSystemNotFound, http.StatusNotFound, "系统不存在"},
	{service.ErrSystemCodeExists, http.StatusConflict, "系统码已存在"},
	{service.ErrRoleNotFound, http.StatusNotFound, "角色不存在"},
	{service.ErrRoleNameExists, http.StatusConflict, "该系统下角色名称已存在"},
	{service.ErrPermissionNotFound, http.StatusNotFound, "权限不存在"},
	{service.ErrPermissionCodeExists, http.StatusConflict, "权限码已存在"},
	{service.ErrUnknownReference, http.StatusBadRequest, "关联的记录不存在或已删除"},

	{service.ErrFileNotFound, http.StatusNotFound, "文件不存在"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "文件太大"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "分类不存在"},
	{service.ErrCategoryExists, http.StatusConflict, "分类已存在"},
}

// respondError 把业务错误转换为响应，未识别的错误按500处理
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
				api.Error(c, m.status, m.message, nil)
				return
			}
			api.Error(c, m.status, m.message, err)
			return
		}
	}
	logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	api.Error(c, http.StatusInternalServerError, fallback, nil)
}

// badRequest 参数错误
func badRequest(c *gin.Context, err error) {
	api.Error(c, http.StatusBadRequest, "参数错误", err)
}
