package request

import (
	"strings"
	"time"

	requesterrors "github.com/SebastienDelgado/detachements-backend/internal/request/errors"
)

// Accepted input grammar, deliberately closed: ISO and French spellings only.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// NormalizeDate parses a date in `YYYY-MM-DD` or `DD/MM/YYYY` form at
// UTC midnight. Any other spelling is rejected.
func NormalizeDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, requesterrors.ErrInvalidDateFormat
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, requesterrors.ErrInvalidDateFormat
}
