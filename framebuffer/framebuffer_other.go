//go:build !linux

package framebuffer

import (
	"errors"

	"github.com/BeatGlow/tft"
)

var ErrNotSupported = errors.New("framebuffer: not supported")

func Open(_ string) (tft.Display, error) {
	return nil, ErrNotSupported
}
