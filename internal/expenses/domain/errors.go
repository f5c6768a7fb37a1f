package domain

import "errors"

// ErrNotFound reports a missing expense.
var ErrNotFound = errors.New("expenses: expense not found")
