package client

import "errors"

var ErrUnknownStore = errors.New("unknown store backend")
