package roster

import "errors"

var (
	ErrMalformedInput = errors.New("malformed roster file")
	ErrMissingColumns = errors.New("missing required columns")
	ErrUnknownColumns = errors.New("unknown columns")
)
