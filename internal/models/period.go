package models

import (
	"fmt"
	"strconv"
	"strings"

	"input-portal/internal/common"
)

const (
	MinYear = 2020
	MaxYear = 2100
)

var Quarters = []string{"Q1", "Q2", "Q3", "Q4"}

var (
	ErrInvalidYear    = common.Reason(common.ErrValidation, fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear))
	ErrInvalidQuarter = common.Reason(common.ErrValidation, "quarter must be one of Q1, Q2, Q3, Q4")
	ErrInvalidMonth   = common.Reason(common.ErrValidation, "month in quarter must be 1, 2 or 3")
)

// FiscalPeriod identifies a reporting window. It is never persisted as an
// object, only encoded into artifact paths and submission metadata.
type FiscalPeriod struct {
	Year     int    `json:"year"`
	Quarter  string `json:"quarter"`
	MonthInQ int    `json:"month_in_q"`
}

// NewFiscalPeriod normalizes the quarter ("q2" -> "Q2") and validates.
func NewFiscalPeriod(year int, quarter string, monthInQ int) (FiscalPeriod, error) {
	p := FiscalPeriod{Year: year, Quarter: strings.ToUpper(strings.TrimSpace(quarter)), MonthInQ: monthInQ}
	if err := p.Validate(); err != nil {
		return FiscalPeriod{}, err
	}
	return p, nil
}

func (p FiscalPeriod) Validate() error {
	if p.Year < MinYear || p.Year > MaxYear {
		return ErrInvalidYear
	}
	valid := false
	for _, q := range Quarters {
		if p.Quarter == q {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidQuarter
	}
	if p.MonthInQ < 1 || p.MonthInQ > 3 {
		return ErrInvalidMonth
	}
	return nil
}

// MonthSegment is the leaf directory name, e.g. "month_2".
func (p FiscalPeriod) MonthSegment() string {
	return "month_" + strconv.Itoa(p.MonthInQ)
}

func (p FiscalPeriod) String() string {
	return fmt.Sprintf("%d-%s-M%d", p.Year, p.Quarter, p.MonthInQ)
}
