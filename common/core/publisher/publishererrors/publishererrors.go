package publishererrors

import "errors"

var ErrEmptyBroker = errors.New("publisher requires a kafka broker address")
var ErrEmptyTopic = errors.New("publisher requires a topic")
