package v1

import (
	"mime"
	"net/http"

	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/api"
	"github.com/Joker-Pro-Max/Pineapple/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// FileHandler 文件与分类处理器
type FileHandler struct {
	fileService     service.FileService
	categoryService service.CategoryService
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService service.FileService, categoryService service.CategoryService) *FileHandler {
	return &FileHandler{
		fileService:     fileService,
		categoryService: categoryService,
	}
}

// Register 注册路由
func (h *FileHandler) Register(r *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	files := r.Group("/files", authMiddleware.Required())
	{
		files.POST("/upload", h.Upload)
		files.GET("/list", h.List)
		files.GET("/:id", h.Get)
		files.GET("/:id/download", h.Download)
		files.DELETE("/:id/delete", h.Delete)
		files.DELETE("/:id/cancel-del", h.CancelDelete)

		categories := files.Group("/category")
		{
			categories.POST("/create", h.CreateCategory)
			categories.GET("/list", h.ListCategories)
			categories.DELETE("/:id/del", h.DeleteCategory)
			categories.DELETE("/:id/cancel-del", h.CancelDeleteCategory)
		}
	}
}

// Upload 上传文件，表单字段 file 和 category
func (h *FileHandler) Upload(c *gin.Context) {
	categoryUUID := c.PostForm("category")
	fileHeader, err := c.FormFile("file")
	if err != nil || categoryUUID == "" {
		api.Error(c, http.StatusBadRequest, "file 和 category 必填", err)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		api.Error(c, http.StatusBadRequest, "无法读取上传的文件", err)
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, created, err := h.fileService.Upload(c.Request.Context(), middleware.MustGetPrincipal(c).Subject(), &service.FileUpload{
		CategoryUUID: categoryUUID,
		Filename:     fileHeader.Filename,
		ContentType:  contentType,
		Size:         fileHeader.Size,
		Content:      src,
	})
	if err != nil {
		respondError(c, err, "上传文件失败")
		return
	}
	if created {
		api.Created(c, file)
		return
	}
	api.Success(c, file)
}

// List 文件列表
func (h *FileHandler) List(c *gin.Context) {
	p := api.ParsePagination(c)
	filter := &model.FileFilter{
		CategoryUUID: c.Query("category"),
		ContentType:  c.Query("content_type"),
		CreatedBy:    c.Query("created_by"),
	}

	files, total, err := h.fileService.List(c.Request.Context(), filter, p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取文件列表失败")
		return
	}
	api.Paginated(c, p, total, files)
}

// Get 文件信息
func (h *FileHandler) Get(c *gin.Context) {
	file, err := h.fileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取文件失败")
		return
	}
	api.Success(c, file)
}

// Download 下载文件内容
func (h *FileHandler) Download(c *gin.Context) {
	file, content, err := h.fileService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "下载文件失败")
		return
	}
	defer content.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename})
	c.DataFromReader(http.StatusOK, file.FileSize, file.ContentType, content, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Delete 软删除文件
func (h *FileHandler) Delete(c *gin.Context) {
	file, err := h.fileService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "删除文件失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(file))
}

// CancelDelete 撤销删除文件
func (h *FileHandler) CancelDelete(c *gin.Context) {
	file, err := h.fileService.CancelDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "撤销删除失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(file))
}

// CreateCategory 创建分类
func (h *FileHandler) CreateCategory(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), middleware.MustGetPrincipal(c).Subject(), &req)
	if err != nil {
		respondError(c, err, "创建分类失败")
		return
	}
	api.Created(c, category)
}

// ListCategories 分类列表
func (h *FileHandler) ListCategories(c *gin.Context) {
	p := api.ParsePagination(c)
	categories, total, err := h.categoryService.List(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		respondError(c, err, "获取分类列表失败")
		return
	}
	api.Paginated(c, p, total, categories)
}

// DeleteCategory 软删除分类
func (h *FileHandler) DeleteCategory(c *gin.Context) {
	category, err := h.categoryService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "删除分类失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(category))
}

// CancelDeleteCategory 撤销删除分类
func (h *FileHandler) CancelDeleteCategory(c *gin.Context) {
	category, err := h.categoryService.CancelDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "撤销删除失败")
		return
	}
	api.Success(c, model.NewDeletedResponse(category))
}
