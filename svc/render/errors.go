package render

import "errors"

var (
	ErrInvalidTemplate   = errors.New("render: invalid card template")
	ErrInvalidData       = errors.New("render: invalid template data")
	ErrInvalidExpression = errors.New("render: invalid expression")
)
