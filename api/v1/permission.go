package v1

import (
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// PermissionHandler 权限码处理器
type PermissionHandler struct {
	permissionService service.PermissionService
}

// NewPermissionHandler 创建权限码处理器实例
func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// Register 注册路由，r为 /account 分组
func (h *PermissionHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	permissions := r.Group("/permission", authMiddleware.Required(), authMiddleware.RequireAdmin())
	{
		permissions.POST("/create", h.Create)
		permissions.GET("/list", h.List)
		permissions.GET("/:id", h.Get)
		permissions.PUT("/:id", h.Update)
		permissions.DELETE("/:id/del", h.Delete)
		permissions.DELETE("/:id/cancel-del", h.CancelDelete)
	}
}

// Create 创建权限码
func (h *PermissionHandler) Create(c *gin.Context) {
	var req model.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	permission, err := h.permissionService.Create(c.Request.Context(), middleware.MustGetPrincipal(c).Subject(), &req)
	if err != nil {
		respondError(c, err, "创建权限失败")
		return
	}
	api.Created(c, model.NewPermissionResponse(permission))
}

// List 权限码列表
func (h *PermissionHandler) List(c *gin.Context) {
	var filter model.PermissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	p := api.ParsePagination(c)

	permissions, total, err := h.permissionService.List(c.Request.Context(), &filter, p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取权限列表失败")
		return
	}
	results := make([]*model.PermissionResponse, 0, len(permissions))
	for i := range permissions {
		results = append(results, model.NewPermissionResponse(&permissions[i]))
	}
	api.Paginated(c, p, total, results)
}

// Get 权限码详情
func (h *PermissionHandler) Get(c *gin.Context) {
	permission, err := h.permissionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取权限失败")
		return
	}
	api.Success(c, model.NewPermissionResponse(permission))
}

// Update 修改权限码
func (h *PermissionHandler) Update(c *gin.Context) {
	var req model.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	permission, err := h.permissionService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "修改权限失败")
		return
	}
	api.Success(c, model.NewPermissionResponse(permission))
}

// Delete 软删除
func (h *PermissionHandler) Delete(c *gin.Context) {
	permission, err := h.permissionService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "删除权限失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(permission))
}

// CancelDelete 撤销删除
func (h *PermissionHandler) CancelDelete(c *gin.Context) {
	permission, err := h.permissionService.CancelDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "撤销删除失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(permission))
}
