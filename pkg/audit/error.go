package audit

import "errors"

// ErrAudit wraps failures to durably append a record.
var ErrAudit = errors.New("audit log failed")
