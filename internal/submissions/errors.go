package submissions

import "input-portal/internal/common"

var (
	ErrMissingCompany     = common.Reason(common.ErrValidation, "company is required")
	ErrInvalidMetricValue = common.Reason(common.ErrValidation, "metric values must be finite numbers")
	ErrTooManyCollisions  = common.Reason(common.ErrPersistence, "no free artifact name for this second")
)
