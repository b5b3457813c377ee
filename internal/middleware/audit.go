package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/gin-gonic/gin"
)

// AuditResourceIDKey lets a handler report the id of a record it created.
const AuditResourceIDKey = "audit_resource_id"

// AuditRecorder persists one audit entry without failing the request.
type AuditRecorder interface {
	Record(ctx context.Context, entry model.AuditLog)
}

var auditActions = map[string]string{
	http.MethodPost:   "create",
	http.MethodPut:    "update",
	http.MethodPatch:  "update",
	http.MethodDelete: "delete",
}

// auditRouteActions overrides the method-derived action for routes that
// do not create a record.
var auditRouteActions = map[string]string{
	"/api/auth/logout": "logout",
}

// Audit records every successful mutating request after the handler ran.
// Reads and failed requests are not audited.
func Audit(rec AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, mutating := auditActions[c.Request.Method]
		status := c.Writer.Status()
		if !mutating || status < 200 || status >= 300 {
			return
		}
		if override, ok := auditRouteActions[c.FullPath()]; ok {
			action = override
		}

		entry := model.AuditLog{
			UserID:    UserID(c),
			Action:    action,
			Resource:  auditResource(c.FullPath()),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}
		if id, ok := c.Get(AuditResourceIDKey); ok {
			if v, ok := id.(uint); ok {
				entry.ResourceID = &v
			}
		} else if raw := c.Param("id"); raw != "" {
			if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
				id := uint(v)
				entry.ResourceID = &id
			}
		}
		rec.Record(c.Request.Context(), entry)
	}
}

// auditResource takes the first segment after /api, e.g. /api/sales/:id -> sales.
func auditResource(route string) string {
	route = strings.TrimPrefix(route, "/api")
	route = strings.TrimPrefix(route, "/")
	if i := strings.IndexByte(route, '/'); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		return "unknown"
	}
	return route
}
