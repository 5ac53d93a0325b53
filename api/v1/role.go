package v1

import (
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// RoleHandler 角色处理器
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler 创建角色处理器实例
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Register 注册路由，r为 /account 分组
func (h *RoleHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	roles := r.Group("/role", authMiddleware.Required(), authMiddleware.RequireAdmin())
	{
		roles.POST("/create", h.Create)
		roles.GET("/list", h.List)
		roles.GET("/:id", h.Get)
		roles.PUT("/:id", h.Update)
		roles.DELETE("/:id/del", h.Delete)
		roles.DELETE("/:id/cancel-del", h.CancelDelete)

		// 角色权限管理
		roles.GET("/:id/permissions", h.GetPermissions)
		roles.PUT("/:id/permissions", h.SetPermissions)
	}
}

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), middleware.MustGetPrincipal(c), &req)
	if err != nil {
		respondError(c, err, "创建角色失败")
		return
	}
	api.Created(c, model.NewRoleResponse(role, nil))
}

// List 角色列表
func (h *RoleHandler) List(c *gin.Context) {
	var filter model.RoleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	p := api.ParsePagination(c)

	roles, total, err := h.roleService.List(c.Request.Context(), &filter, p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取角色列表失败")
		return
	}
	results := make([]*model.RoleResponse, 0, len(roles))
	for i := range roles {
		results = append(results, model.NewRoleResponse(&roles[i], nil))
	}
	api.Paginated(c, p, total, results)
}

// Get 角色详情，包含权限码
func (h *RoleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	role, err := h.roleService.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "获取角色失败")
		return
	}
	codes, err := h.roleService.GetPermissions(ctx, role.UUID)
	if err != nil {
		respondError(c, err, "获取角色权限失败")
		return
	}
	api.Success(c, model.NewRoleResponse(role, codes))
}

// Update 修改角色
func (h *RoleHandler) Update(c *gin.Context) {
	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "修改角色失败")
		return
	}
	api.Success(c, model.NewRoleResponse(role, nil))
}

// Delete 软删除
func (h *RoleHandler) Delete(c *gin.Context) {
	role, err := h.roleService.Delete(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "删除角色失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(role))
}

// CancelDelete 撤销删除
func (h *RoleHandler) CancelDelete(c *gin.Context) {
	role, err := h.roleService.CancelDelete(c.Request.Context(), middleware.MustGetPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "撤销删除失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(role))
}

// GetPermissions 角色的权限码
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	codes, err := h.roleService.GetPermissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取角色权限失败")
		return
	}
	api.Success(c, codes)
}

// SetPermissions 覆盖角色的权限
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.roleService.SetPermissions(c.Request.Context(), c.Param("id"), req.UUIDs); err != nil {
		respondError(c, err, "设置角色权限失败")
		return
	}
	api.Success(c, gin.H{"uuid": c.Param("id"), "uuids": req.UUIDs})
}
