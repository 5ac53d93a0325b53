package v1

import (
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	systemService service.SystemService
}

// NewSystemHandler 创建系统处理器实例
func NewSystemHandler(systemService service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// Register 注册路由，r为 /account 分组
func (h *SystemHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	systems := r.Group("/systems", authMiddleware.Required(), authMiddleware.RequireAdmin())
	{
		systems.POST("/create", h.Create)
		systems.GET("/list", h.List)
		systems.GET("/:id", h.Get)
		systems.PUT("/:id", h.Update)
		systems.DELETE("/:id/del", h.Delete)
		systems.DELETE("/:id/cancel-del", h.CancelDelete)
	}
}

// Create 创建系统
func (h *SystemHandler) Create(c *gin.Context) {
	var req model.CreateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	system, err := h.systemService.Create(c.Request.Context(), middleware.MustGetPrincipal(c).Subject(), &req)
	if err != nil {
		respondError(c, err, "创建系统失败")
		return
	}
	api.Created(c, model.NewSystemResponse(system))
}

// List 系统列表
func (h *SystemHandler) List(c *gin.Context) {
	var filter model.SystemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}
	p := api.ParsePagination(c)

	systems, total, err := h.systemService.List(c.Request.Context(), &filter, p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取系统列表失败")
		return
	}
	results := make([]*model.SystemResponse, 0, len(systems))
	for i := range systems {
		results = append(results, model.NewSystemResponse(&systems[i]))
	}
	api.Paginated(c, p, total, results)
}

// Get 系统详情
func (h *SystemHandler) Get(c *gin.Context) {
	system, err := h.systemService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取系统失败")
		return
	}
	api.Success(c, model.NewSystemResponse(system))
}

// Update 修改系统
func (h *SystemHandler) Update(c *gin.Context) {
	var req model.UpdateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	system, err := h.systemService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "修改系统失败")
		return
	}
	api.Success(c, model.NewSystemResponse(system))
}

// Delete 软删除
func (h *SystemHandler) Delete(c *gin.Context) {
	system, err := h.systemService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "删除系统失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(system))
}

// CancelDelete 撤销删除
func (h *SystemHandler) CancelDelete(c *gin.Context) {
	system, err := h.systemService.CancelDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "撤销删除失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(system))
}
