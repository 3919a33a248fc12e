package validatorerrors

import "errors"

var ErrNilClient = errors.New("validator requires a subgraph client")
