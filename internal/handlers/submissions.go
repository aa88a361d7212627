package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"input-portal/internal/common"
	"input-portal/internal/database"
	"input-portal/internal/middleware"
	"input-portal/internal/models"
	"input-portal/internal/telemetry"
)

var (
	errForeignCompany = common.Reason(common.ErrAuth, "clients may only submit for their own company")
	errUnknownCompany = common.Reason(common.ErrValidation, "unknown company")
	errMissingFile    = common.Reason(common.ErrValidation, "file is required")
)

// Dictionary lists the metrics a submission must carry.
func (h *Handler) Dictionary(c *gin.Context) {
	render(c, http.StatusOK, gin.H{"metrics": h.dict.Definitions()})
}

// Companies lists the companies an admin may submit for.
func (h *Handler) Companies(c *gin.Context) {
	companies, err := h.creds.Companies(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	if companies == nil {
		companies = []string{}
	}
	render(c, http.StatusOK, gin.H{"companies": companies})
}

type submissionRequest struct {
	Company  string             `json:"company"`
	Year     int                `json:"year"`
	Quarter  string             `json:"quarter"`
	MonthInQ int                `json:"month_in_q"`
	Metrics  map[string]float64 `json:"metrics"`
	RawFiles []string           `json:"raw_files"`
}

func (h *Handler) CreateSubmission(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := middleware.CurrentIdentity(c)

	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Submission(telemetry.OutcomeRejected)
		render(c, http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	company, err := h.resolveCompany(ctx, id, req.Company)
	if err != nil {
		h.metrics.Submission(telemetry.OutcomeRejected)
		h.renderError(c, err)
		return
	}
	period, err := models.NewFiscalPeriod(req.Year, req.Quarter, req.MonthInQ)
	if err != nil {
		h.metrics.Submission(telemetry.OutcomeRejected)
		h.renderError(c, err)
		return
	}
	metrics, err := h.dict.Normalize(req.Metrics)
	if err != nil {
		h.metrics.Submission(telemetry.OutcomeRejected)
		h.renderError(c, err)
		return
	}
	if err := h.dict.Check(metrics); err != nil {
		h.metrics.Submission(telemetry.OutcomeRejected)
		h.renderError(c, err)
		return
	}

	art, err := h.subs.SaveSubmission(ctx, company, id.Username, period, metrics, req.RawFiles...)
	if err != nil {
		h.metrics.Submission(outcomeFor(err))
		h.renderError(c, err)
		return
	}
	h.metrics.Submission(telemetry.OutcomeSuccess)
	h.audit(id.Username, database.EntitySubmission, art.Key, database.ActionCreate, "company="+company+" period="+period.String())
	render(c, http.StatusCreated, gin.H{"submission": art})
}

type uploadForm struct {
	Company  string `form:"company"`
	Year     int    `form:"year"`
	Quarter  string `form:"quarter"`
	MonthInQ int    `form:"month_in_q"`
}

func (h *Handler) CreateUpload(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := middleware.CurrentIdentity(c)

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.metrics.Upload(telemetry.OutcomeRejected, 0)
		render(c, http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	company, err := h.resolveCompany(ctx, id, form.Company)
	if err != nil {
		h.metrics.Upload(telemetry.OutcomeRejected, 0)
		h.renderError(c, err)
		return
	}
	period, err := models.NewFiscalPeriod(form.Year, form.Quarter, form.MonthInQ)
	if err != nil {
		h.metrics.Upload(telemetry.OutcomeRejected, 0)
		h.renderError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.metrics.Upload(telemetry.OutcomeRejected, 0)
		h.renderError(c, errMissingFile)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.metrics.Upload(telemetry.OutcomeError, 0)
		h.renderError(c, err)
		return
	}
	defer f.Close()

	up, err := h.subs.SaveRawUpload(ctx, company, id.Username, period, fh.Filename, f)
	if err != nil {
		h.metrics.Upload(outcomeFor(err), 0)
		h.renderError(c, err)
		return
	}
	h.metrics.Upload(telemetry.OutcomeSuccess, up.Size)
	h.audit(id.Username, database.EntityUpload, up.Key, database.ActionCreate, "original="+up.OriginalFilename)
	render(c, http.StatusCreated, gin.H{"upload": up})
}

// resolveCompany pins clients to their own company and lets admins act for
// any company that has users.
func (h *Handler) resolveCompany(ctx context.Context, id models.Identity, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if !id.IsAdmin() {
		if requested != "" && requested != id.Company {
			return "", errForeignCompany
		}
		return id.Company, nil
	}
	if requested == "" {
		return "", errUnknownCompany
	}
	companies, err := h.creds.Companies(ctx)
	if err != nil {
		return "", err
	}
	for _, known := range companies {
		if known == requested {
			return requested, nil
		}
	}
	return "", errUnknownCompany
}

func outcomeFor(err error) string {
	if statusFor(err) >= http.StatusInternalServerError {
		return telemetry.OutcomeError
	}
	return telemetry.OutcomeRejected
}
