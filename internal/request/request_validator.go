package request

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	requesterrors "github.com/SebastienDelgado/detachements-backend/internal/request/errors"
	"github.com/google/uuid"
)

// Deliberately permissive: local@domain.tld, nothing stricter.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// cleanEmail strips control and whitespace characters before matching.
func cleanEmail(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

func validEmail(v string) bool {
	return emailPattern.MatchString(v)
}

func normalizePeriod(v string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "":
		return PeriodFull, true
	case PeriodFull:
		return PeriodFull, true
	case PeriodAM:
		return PeriodAM, true
	case PeriodPM:
		return PeriodPM, true
	default:
		return "", false
	}
}

// validateSubmission turns a raw submission into a canonical pending
// record, or a field-scoped French validation error. No I/O.
func validateSubmission(req CreateRequestDTO, allowedTypes []string, now time.Time) (*DetachmentRequest, error) {
	if strings.TrimSpace(req.ApplicantName) == "" {
		return nil, requesterrors.ErrApplicantNameRequired
	}
	if strings.TrimSpace(req.Entity) == "" {
		return nil, requesterrors.ErrEntityRequired
	}
	if strings.TrimSpace(req.Place) == "" {
		return nil, requesterrors.ErrPlaceRequired
	}
	if strings.TrimSpace(req.DateFrom) == "" {
		return nil, requesterrors.ErrDateFromRequired
	}

	applicantEmail := cleanEmail(req.ApplicantEmail)
	if !validEmail(applicantEmail) {
		return nil, requesterrors.ErrInvalidApplicantEmail
	}
	managerEmail := cleanEmail(req.ManagerEmail)
	if !validEmail(managerEmail) {
		return nil, requesterrors.ErrInvalidManagerEmail
	}
	hrEmail := cleanEmail(req.HREmail)
	if !validEmail(hrEmail) {
		return nil, requesterrors.ErrInvalidHREmail
	}

	dateFrom, err := NormalizeDate(req.DateFrom)
	if err != nil {
		return nil, requesterrors.ErrInvalidDateFrom
	}
	dateTo := dateFrom
	if strings.TrimSpace(req.DateTo) != "" {
		dateTo, err = NormalizeDate(req.DateTo)
		if err != nil {
			return nil, requesterrors.ErrInvalidDateTo
		}
	}
	if dateTo.Before(dateFrom) {
		return nil, requesterrors.ErrInvalidDateRange
	}

	startPeriod, ok := normalizePeriod(req.StartPeriod)
	if !ok {
		return nil, requesterrors.ErrInvalidStartPeriod
	}
	endPeriod, ok := normalizePeriod(req.EndPeriod)
	if !ok {
		return nil, requesterrors.ErrInvalidEndPeriod
	}
	// An afternoon start cannot end the same morning.
	if dateFrom.Equal(dateTo) && startPeriod == PeriodPM && endPeriod == PeriodAM {
		return nil, requesterrors.ErrImpossibleHalfDayOrder
	}

	typ := strings.TrimSpace(req.Type)
	if !typeAllowed(typ, allowedTypes) {
		return nil, requesterrors.ErrInvalidType
	}

	return &DetachmentRequest{
		ID:             uuid.New(),
		ApplicantName:  strings.TrimSpace(req.ApplicantName),
		ApplicantEmail: applicantEmail,
		Entity:         strings.TrimSpace(req.Entity),
		Place:          strings.TrimSpace(req.Place),
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		StartPeriod:    startPeriod,
		EndPeriod:      endPeriod,
		Days:           ComputeDays(dateFrom, dateTo, startPeriod, endPeriod),
		Type:           typ,
		ManagerEmail:   managerEmail,
		HREmail:        hrEmail,
		Comment:        strings.TrimSpace(req.Comment),
		Status:         StatusPending,
		CreatedAt:      now,
	}, nil
}

func typeAllowed(typ string, allowed []string) bool {
	for _, t := range allowed {
		if typ == t {
			return true
		}
	}
	return false
}
