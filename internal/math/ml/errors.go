package ml

import "errors"

var (
	EmptyInputErr       = errors.New("empty input")
	InvalidParameterErr = errors.New("invalid parameter")
	NonFiniteErr        = errors.New("non-finite value")
)
