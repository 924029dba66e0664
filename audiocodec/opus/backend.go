// Package opus implements the audiocodec.Backend with libopus, accessed
// through the cgo binding gopkg.in/hraban/opus.v2.
package opus

import (
	"errors"
	"fmt"
	"sync"

	ac "github.com/dh1tw/opusbridge/audiocodec"
	opus "gopkg.in/hraban/opus.v2"
)

// Backend creates libopus encoders and decoders.
type Backend struct {
	sync.RWMutex
	name    string
	options Options
}

// NewBackend is the constructor method for the libopus backend. The
// options are applied to every encoder created by the backend.
func NewBackend(opts ...Option) *Backend {

	b := &Backend{
		name: "opus",
		options: Options{
			Complexity: -1,
		},
	}

	for _, option := range opts {
		option(&b.options)
	}

	return b
}

// Name returns the name of the audio codec
func (b *Backend) Name() string {
	return b.name
}

// Options returns a copy of the backend's options
func (b *Backend) Options() Options {
	b.RLock()
	defer b.RUnlock()
	return b.options
}

// Configure applies opts on top of the current options. Encoders created
// afterwards use the new values; existing encoders keep theirs.
func (b *Backend) Configure(opts ...Option) {
	b.Lock()
	defer b.Unlock()
	for _, option := range opts {
		option(&b.options)
	}
}

// Version returns the version string of the linked libopus.
func (b *Backend) Version() string {
	return opus.Version()
}

// NewEncoder creates a new libopus encoder.
func (b *Backend) NewEncoder(cfg ac.Config) (ac.NativeEncoder, error) {
	return newEncoder(cfg, b.Options())
}

// NewDecoder creates a new libopus decoder.
func (b *Backend) NewDecoder(cfg ac.Config) (ac.NativeDecoder, error) {
	return newDecoder(cfg)
}

func application(app ac.Application) opus.Application {
	switch app {
	case ac.AppAudio:
		return opus.AppAudio
	case ac.AppRestrictedLowdelay:
		return opus.AppRestrictedLowdelay
	}
	return opus.AppVoIP
}

// nativeErr converts errors returned by the binding into audiocodec status
// codes. Argument checks done by the binding itself on the Go side are
// reported as StatusBadArg.
func nativeErr(err error) error {
	if err == nil {
		return nil
	}
	var oe opus.Error
	if errors.As(err, &oe) {
		return ac.Status(oe)
	}
	return fmt.Errorf("%w: %v", ac.StatusBadArg, err)
}
