package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"input-portal/internal/common"
	"input-portal/internal/credentials"
	"input-portal/internal/database"
	"input-portal/internal/middleware"
	"input-portal/internal/models"
	"input-portal/internal/telemetry"
)

var errAdminConfigured = common.Reason(common.ErrValidation, "admin password already set")

// SetupStatus tells a fresh client whether the admin setup flow must run.
func (h *Handler) SetupStatus(c *gin.Context) {
	set, err := h.creds.AdminPasswordSet(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"admin_password_set": set})
}

type setupForm struct {
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Setup sets the first admin password. It refuses once one is set.
func (h *Handler) Setup(c *gin.Context) {
	ctx := c.Request.Context()
	var form setupForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	set, err := h.creds.AdminPasswordSet(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if set {
		render(c, http.StatusConflict, gin.H{"error": errAdminConfigured.Error()})
		return
	}
	if err := credentials.CheckConfirmation(form.Password, form.PasswordConfirm); err != nil {
		h.renderError(c, err)
		return
	}
	if err := h.creds.SetPassword(ctx, models.AdminUsername, models.RoleAdmin, form.Password); err != nil {
		h.renderError(c, err)
		return
	}
	h.audit(models.AdminUsername, database.EntityUser, models.AdminUsername, database.ActionSetPassword, "initial admin setup")
	render(c, http.StatusOK, gin.H{"admin_password_set": true})
}

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.creds.Authenticate(c.Request.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, credentials.ErrUserNotFound), errors.Is(err, credentials.ErrInvalidCredentials):
		h.metrics.Login(telemetry.OutcomeRejected)
		h.logger.Info("login rejected", zap.String("username", form.Username), zap.Error(err))
		render(c, http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	case err != nil:
		h.metrics.Login(telemetry.OutcomeError)
		h.renderError(c, err)
		return
	}

	if err := middleware.SaveIdentity(c, id); err != nil {
		h.metrics.Login(telemetry.OutcomeError)
		h.renderError(c, err)
		return
	}
	h.metrics.Login(telemetry.OutcomeSuccess)
	render(c, http.StatusOK, gin.H{"user": id})
}

func (h *Handler) Logout(c *gin.Context) {
	_ = middleware.ClearIdentity(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	render(c, http.StatusOK, gin.H{"user": id})
}
