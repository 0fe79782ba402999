// Package function 提供公开函数端点（/functions/v1/*）的通用约定：
// 固定的跨域响应头、OPTIONS 预检和成功响应格式
package function

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 函数端点跨域响应头
const (
	AllowOrigin  = "*"
	AllowHeaders = "authorization, x-client-info, apikey, content-type"
	AllowMethods = "POST, OPTIONS"
)

// CORS 为每个响应写入跨域头，OPTIONS 直接返回 200
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", AllowOrigin)
		h.Set("Access-Control-Allow-Headers", AllowHeaders)
		h.Set("Access-Control-Allow-Methods", AllowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// Register 在 rg 上注册 POST 和 OPTIONS 两个方法
func Register(rg gin.IRoutes, path string, handler gin.HandlerFunc) {
	rg.POST(path, handler)
	rg.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusOK) })
}
