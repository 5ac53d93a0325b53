package v1

import (
	"context"
	"net/http"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建用户管理处理器实例
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register 注册路由，r为 /account 分组
func (h *UserHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// 本人或管理员可修改资料
	r.PUT("/userinfo/:id/update", authMiddleware.Required(), h.Update)

	users := r.Group("/user", authMiddleware.Required(), authMiddleware.RequireAdmin())
	{
		users.GET("/list", h.List)
		users.GET("/:id", h.Get)
		users.PUT("/:id/roles", h.SetRoles)
		users.PUT("/:id/systems", h.SetSystems)
		users.PUT("/:id/permissions", h.SetPermissions)
	}
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	var filter model.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	p := api.ParsePagination(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), &filter, p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取用户列表失败")
		return
	}
	results := make([]*model.UserBrief, 0, len(users))
	for i := range users {
		results = append(results, model.NewUserBrief(&users[i]))
	}
	api.Paginated(c, p, total, results)
}

// Get 用户详情
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取用户失败")
		return
	}
	api.Success(c, model.NewUserBrief(user))
}

// Update 修改用户资料
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	principal := middleware.MustGetPrincipal(c)
	if principal.Subject() != id && !principal.IsAdmin() {
		api.Error(c, http.StatusForbidden, "只能修改自己的资料", nil)
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "修改用户失败")
		return
	}
	api.Success(c, model.NewUserBrief(user))
}

// SetRoles 覆盖用户角色
func (h *UserHandler) SetRoles(c *gin.Context) {
	actor := middleware.MustGetPrincipal(c)
	h.assign(c, func(ctx context.Context, uuid string, ids []string) error {
		return h.userService.SetRoles(ctx, actor, uuid, ids)
	}, "设置用户角色失败")
}

// SetSystems 覆盖用户系统
func (h *UserHandler) SetSystems(c *gin.Context) {
	h.assign(c, h.userService.SetSystems, "设置用户系统失败")
}

// SetPermissions 覆盖用户直接权限
func (h *UserHandler) SetPermissions(c *gin.Context) {
	h.assign(c, h.userService.SetPermissions, "设置用户权限失败")
}

func (h *UserHandler) assign(c *gin.Context, set func(ctx context.Context, uuid string, ids []string) error, fallback string) {
	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := set(c.Request.Context(), c.Param("id"), req.UUIDs); err != nil {
		respondError(c, err, fallback)
		return
	}
	api.Success(c, gin.H{"uuid": c.Param("id"), "uuids": req.UUIDs})
}
