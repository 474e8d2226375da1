// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat-go/internal/apperr"
	"gemini-chat-go/pkg/log"
)

// respondError 把业务错误翻译为 HTTP 响应。
// 已分类的 *apperr.Error 映射为其自带的状态码和提示；其余错误一律
// 返回 500 和调用方给定的通用提示，内部细节只进日志不进响应。
func respondError(c *gin.Context, op string, err error, fallback string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		log.Warnf("%s: %s", op, appErr.Message)
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}

	log.Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
