package subgraphclienterrors

import "errors"

var ErrEmptyEndpoint = errors.New("subgraph client requires an endpoint url")
