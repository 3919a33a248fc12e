package deduperrors

import "errors"

var ErrNilClient = errors.New("deduplicator requires a redis client")
