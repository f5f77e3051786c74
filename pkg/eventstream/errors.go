package eventstream

import "errors"

// ErrNilQueryEvent indicates a nil event payload was provided to a publisher.
var ErrNilQueryEvent = errors.New("nil query event")
