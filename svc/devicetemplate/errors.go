package devicetemplate

import "errors"

var (
	ErrInvalidTemplate = errors.New("devicetemplate: invalid template")
	ErrStore           = errors.New("devicetemplate: store operation failed")
	ErrDecode          = errors.New("devicetemplate: failed to decode seed file")
)
