package evidence

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOpenDatabase = errors.New("open hints database failed")
	ErrQuery        = errors.New("hints query failed")
)
