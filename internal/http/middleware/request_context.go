package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/productintel-backend/internal/platform/ctxutil"
)

func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			c.Header("X-Request-ID", rd.RequestID)
		}
		c.Next()
	}
}
