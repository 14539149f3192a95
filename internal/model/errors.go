package model

import (
	"errors"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrDuplicateMatrix    = errors.New("duplicate pattern or variant")
)
