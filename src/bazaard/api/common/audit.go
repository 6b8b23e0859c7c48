package common

import (
	"strconv"

	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/gin-gonic/gin"
)

var auditLogger = logs.NewDefault()

// SetAuditLogger sets the logger used for audit events.
func SetAuditLogger(l *logs.Logger) {
	if l != nil {
		auditLogger = l
	}
}

// AuditEvent is a security-relevant event: logins, token exchanges, role
// changes and deactivations.
type AuditEvent struct {
	// Action identifies the operation, e.g. "user.login" or "user.role_update"
	Action string
	// AccountID is the acting account, 0 for unauthenticated requests
	AccountID int64
	Email     string
	// Resource identifies the target, e.g. "user:12"
	Resource string
	ClientIP string
	Detail   string
	Success  bool
}

// AuditLog emits a structured audit entry tagged audit=true. When the event
// carries no account, the one authorized for c is used.
func AuditLog(c *gin.Context, event AuditEvent) {
	status := "success"
	if !event.Success {
		status = "failure"
	}

	clientIP := event.ClientIP
	if clientIP == "" && c != nil {
		clientIP = c.ClientIP()
	}

	if event.AccountID == 0 && c != nil {
		if account := GetAccountFromContext(c); account != nil {
			event.AccountID = account.ID
			event.Email = account.Email
		}
	}

	args := []any{
		"audit", true,
		"action", event.Action,
		"status", status,
		"client_ip", clientIP,
	}

	if event.AccountID != 0 {
		args = append(args, "account_id", strconv.FormatInt(event.AccountID, 10), "email", event.Email)
	} else if event.Email != "" {
		args = append(args, "email", event.Email)
	}
	if event.Resource != "" {
		args = append(args, "resource", event.Resource)
	}
	if event.Detail != "" {
		args = append(args, "detail", event.Detail)
	}

	auditLogger.Info("audit", args...)
}
