package batchererrors

import "errors"

var ErrInvalidSize = errors.New("batch size must be positive")
var ErrInvalidInterval = errors.New("batch interval must be positive")
var ErrNilLogger = errors.New("batcher requires a logger")
var ErrNilInput = errors.New("batcher requires an input channel")
