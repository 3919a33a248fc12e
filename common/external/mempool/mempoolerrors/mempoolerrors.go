package mempoolerrors

import "errors"

var ErrEmptyEndpoint = errors.New("mempool subscriber requires a websocket endpoint")
