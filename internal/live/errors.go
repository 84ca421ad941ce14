package live

import "errors"

var (
	ErrAlreadyConnected = errors.New("live: already connecting or connected")
	ErrNotConnected     = errors.New("live: client is not connected")
	ErrConnectFailed    = errors.New("live: could not connect")
)
