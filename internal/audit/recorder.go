// Package audit records security-relevant portal events. Recording is
// best-effort: a failed write is logged and never fails the request that
// triggered it.
package audit

import (
	"log"

	auditdb "github.com/hajimeclub/portal/internal/database/audit"
	"github.com/hajimeclub/portal/internal/entities"
)

// Recorder writes audit events through the audit repository.
type Recorder struct {
	repo *auditdb.Repository
}

func NewRecorder(repo *auditdb.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// RecordAuth records an authentication event (login, register, password
// change). Satisfies auth.Auditor.
func (r *Recorder) RecordAuth(userID uint, action, description, ip string, success bool) {
	r.log(entities.AuditEventAuth, userID, action, description, ip, success)
}

// RecordAdmin records an administrative action (member verify/delete).
func (r *Recorder) RecordAdmin(userID uint, action, description, ip string, success bool) {
	r.log(entities.AuditEventAdmin, userID, action, description, ip, success)
}

func (r *Recorder) log(eventType entities.AuditEventType, userID uint, action, description, ip string, success bool) {
	status := entities.AuditStatusSuccess
	if !success {
		status = entities.AuditStatusFailed
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      action,
		Description: description,
		IPAddress:   ip,
		Status:      status,
	}
	if err := r.repo.LogEvent(event); err != nil {
		log.Printf("Failed to record audit event %s/%s: %v", eventType, action, err)
	}
}
