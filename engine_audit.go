package goGuard

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/session"
)

const (
	auditEventNavigation     = "navigation"
	auditEventRedirectLoop   = "redirect_loop"
	auditEventUnknownRoute   = "unknown_route"
	auditEventLogin          = "login"
	auditEventLogout         = "logout"
	auditEventSessionCorrupt = "session_corrupt"
	auditEventStorageFailure = "session_storage_failure"
)

// AuditErrorCode is the stable error classification written into audit events.
type AuditErrorCode string

const (
	auditErrRedirectLoop   AuditErrorCode = "redirect_loop"
	auditErrUnknownRoute   AuditErrorCode = "unknown_route"
	auditErrMalformedUser  AuditErrorCode = "malformed_user"
	auditErrInvalidSession AuditErrorCode = "invalid_session"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrEngineClosed   AuditErrorCode = "engine_closed"
	auditErrInternal       AuditErrorCode = "internal_error"
)

type auditRecord struct {
	eventType    string
	navigationID string
	sess         session.Session
	route        string
	decision     Decision
	success      bool
	err          error
	metadata     map[string]string
}

func (e *Engine) emitAudit(ctx context.Context, rec auditRecord) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    rec.eventType,
		NavigationID: rec.navigationID,
		Route:        rec.route,
		IP:           clientIPFromContext(ctx),
		Success:      rec.success,
		Metadata:     rec.metadata,
	}
	if rec.sess.User != nil {
		event.UserID = rec.sess.User.ID
		event.Role = rec.sess.Role().String()
	}
	if rec.decision.Target != "" {
		event.Decision = rec.decision.Kind.String()
		event.Target = rec.decision.Target
	}
	if code := auditErrorCode(rec.err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrRedirectLoop):
		return auditErrRedirectLoop
	case errors.Is(err, ErrUnknownRoute):
		return auditErrUnknownRoute
	case errors.Is(err, session.ErrMalformedUser):
		return auditErrMalformedUser
	case errors.Is(err, session.ErrInvalidSession):
		return auditErrInvalidSession
	case errors.Is(err, session.ErrStorageUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrEngineClosed):
		return auditErrEngineClosed
	default:
		return auditErrInternal
	}
}
