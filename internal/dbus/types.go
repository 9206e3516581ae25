package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/quicknote/internal/invoke"
	"github.com/jmylchreest/quicknote/internal/model"
)

const (
	// ServiceName is the bus name claimed by quicknoted.
	ServiceName = "io.github.jmylchreest.QuickNote"
	// ServicePath is the object path of the service.
	ServicePath = "/io/github/jmylchreest/QuickNote"
	// ServiceInterface is the interface name of the service.
	ServiceInterface = "io.github.jmylchreest.QuickNote"
)

// D-Bus error names, one per error kind.
const (
	ErrorIO             = ServiceInterface + ".Error.IO"
	ErrorSerialization  = ServiceInterface + ".Error.Serialization"
	ErrorPlatform       = ServiceInterface + ".Error.Platform"
	ErrorUnknownCommand = ServiceInterface + ".Error.UnknownCommand"
	ErrorInvalidArgs    = ServiceInterface + ".Error.InvalidArgs"
	ErrorFailed         = ServiceInterface + ".Error.Failed"
)

// toDBusError converts an operation error into a D-Bus error carrying its
// kind in the error name and its text as the message.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}

	name := ErrorFailed
	switch {
	case errors.Is(err, invoke.ErrUnknownCommand):
		name = ErrorUnknownCommand
	case errors.Is(err, invoke.ErrInvalidArgs):
		name = ErrorInvalidArgs
	default:
		switch model.KindOf(err) {
		case model.KindIO:
			name = ErrorIO
		case model.KindSerialization:
			name = ErrorSerialization
		case model.KindPlatform:
			name = ErrorPlatform
		}
	}
	return dbus.NewError(name, []any{err.Error()})
}

// fromDBusError converts an error returned by the service back into an
// error wrapping the matching sentinel.
func fromDBusError(err error) error {
	if err == nil {
		return nil
	}

	var dbusErr dbus.Error
	if !errors.As(err, &dbusErr) {
		var dbusErrPtr *dbus.Error
		if !errors.As(err, &dbusErrPtr) {
			return err
		}
		dbusErr = *dbusErrPtr
	}

	msg := dbusErr.Error()
	switch dbusErr.Name {
	case ErrorIO:
		return fmt.Errorf("%w: %s", model.ErrIO, msg)
	case ErrorSerialization:
		return fmt.Errorf("%w: %s", model.ErrSerialization, msg)
	case ErrorPlatform:
		return fmt.Errorf("%w: %s", model.ErrPlatform, msg)
	case ErrorUnknownCommand:
		return fmt.Errorf("%w: %s", invoke.ErrUnknownCommand, msg)
	case ErrorInvalidArgs:
		return fmt.Errorf("%w: %s", invoke.ErrInvalidArgs, msg)
	default:
		return err
	}
}
