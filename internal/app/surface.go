package app

import (
	"github.com/sirupsen/logrus"
)

// NullSurface is the headless stand-in used when no GUI front end has bound
// a real web view: HTML swaps are logged and every script answers zero. The
// render pipeline and scroll protocol run against it unchanged.
type NullSurface struct {
	loaded chan bool
}

func NewNullSurface() *NullSurface {
	return &NullSurface{loaded: make(chan bool, 1)}
}

func (s *NullSurface) SetHTML(html string) {
	logrus.Debugf("preview content replaced (%d bytes)", len(html))
	select {
	case s.loaded <- true:
	default:
	}
}

func (s *NullSurface) RunScript(js string) <-chan interface{} {
	ch := make(chan interface{}, 1)
	ch <- float64(0)
	return ch
}

func (s *NullSurface) LoadFinished() <-chan bool {
	return s.loaded
}
