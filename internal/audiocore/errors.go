package audiocore

import (
	"github.com/magicat777/omega6/internal/errors"
)

// Component identifier for audiocore errors
const ComponentAudioCore = "audiocore"

var (
	// ErrAlreadyRunning is returned when capture is started twice
	ErrAlreadyRunning = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryState).
		Context("error", "capture already running").
		Build()

	// ErrNoDeviceSelected is returned when capture is started without an input device
	ErrNoDeviceSelected = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryDevice).
		Context("error", "no input device selected").
		Build()

	// ErrInvalidDevice is returned when a device index does not refer to a
	// known input-capable device
	ErrInvalidDevice = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryValidation).
		Context("error", "invalid input device").
		Build()

	// ErrDeviceEnumeration is returned when the backend cannot list devices
	ErrDeviceEnumeration = errors.New(nil).
		Component(ComponentAudioCore).
		Category(errors.CategoryDevice).
		Context("error", "device enumeration failed").
		Build()
)
