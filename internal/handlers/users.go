package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"input-portal/internal/credentials"
	"input-portal/internal/database"
	"input-portal/internal/middleware"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.creds.ListUsers(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"users": users})
}

type createUserForm struct {
	Company         string `form:"company" json:"company"`
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// CreateUser adds a client account. Admin only.
func (h *Handler) CreateUser(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	var form createUserForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if form.Password != form.PasswordConfirm {
		h.renderError(c, credentials.ErrPasswordMismatch)
		return
	}
	u, err := h.creds.CreateClientUser(c.Request.Context(), form.Company, form.Username, form.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.audit(id.Username, database.EntityUser, u.Username, database.ActionCreate, "company="+u.Company)
	render(c, http.StatusCreated, gin.H{"user": u})
}
