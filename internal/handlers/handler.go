// Package handlers is the JSON surface of the portal. It authenticates
// callers through the credential store and scopes every submission or upload
// to the caller's identity.
package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"input-portal/internal/credentials"
	"input-portal/internal/database"
	"input-portal/internal/dictionary"
	"input-portal/internal/submissions"
	"input-portal/internal/telemetry"
)

// Deps are the collaborators a Handler needs. DB may be nil, in which case
// the audit journal is disabled.
type Deps struct {
	Credentials *credentials.Store
	Submissions *submissions.Store
	Dictionary  *dictionary.Dictionary
	DB          *gorm.DB
	Metrics     *telemetry.Metrics
	Logger      *zap.Logger
}

type Handler struct {
	creds   *credentials.Store
	subs    *submissions.Store
	dict    *dictionary.Dictionary
	db      *gorm.DB
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		creds:   d.Credentials,
		subs:    d.Submissions,
		dict:    d.Dictionary,
		db:      d.DB,
		metrics: d.Metrics,
		logger:  d.Logger,
	}
	if h.dict == nil {
		h.dict = dictionary.Default()
	}
	if h.metrics == nil {
		h.metrics = telemetry.New()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// audit writes a journal row; failures are logged, never returned.
func (h *Handler) audit(actor, entity, key, action, details string) {
	if err := database.CreateAuditLog(h.db, actor, entity, key, action, details); err != nil {
		h.logger.Warn("audit log write failed", zap.Error(err), zap.String("entity", entity), zap.String("key", key))
	}
}
