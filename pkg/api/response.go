package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 分页参数
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Response 通用API响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Page 分页数据
type Page struct {
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
	Results    interface{} `json:"results"`
}

// Pagination 分页请求参数
type Pagination struct {
	Page     int
	PageSize int
}

// Offset 偏移量
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParsePagination 解析page/page_size，非法值回落到默认值，page_size最大为100
func ParsePagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

// NewPage 构造分页数据
func NewPage(p Pagination, total int64, results interface{}) *Page {
	pages := total / int64(p.PageSize)
	if total%int64(p.PageSize) != 0 {
		pages++
	}
	return &Page{
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: pages,
		Results:    results,
	}
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "操作成功",
		Data:    data,
	})
}

// Created 返回创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "创建成功",
		Data:    data,
	})
}

// Paginated 返回分页响应
func Paginated(c *gin.Context, p Pagination, total int64, results interface{}) {
	Success(c, NewPage(p, total, results))
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   errMsg,
	})
}

// Abort 返回错误响应并中断后续处理
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
	})
}
