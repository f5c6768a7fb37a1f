package domain

import "errors"

// ErrNoDataForPeriod means the year filter left no months to report.
var ErrNoDataForPeriod = errors.New("report: no data for requested period")
