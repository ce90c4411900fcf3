// Package preference exposes a read-only snapshot of the device-wide
// upload settings.
package preference

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

const (
	KeyAutoSend        string = "autosend"
	KeyDeleteAfterSend string = "delete_after_send"
	KeyProtocol        string = "protocol"
)

type AutoSendMode int

const (
	AutoSendOff AutoSendMode = iota
	AutoSendWifi
	AutoSendCellular
	AutoSendWifiAndCellular
)

func (m AutoSendMode) String() string {
	switch m {
	case AutoSendWifi:
		return "wifi_only"
	case AutoSendCellular:
		return "cellular_only"
	case AutoSendWifiAndCellular:
		return "wifi_and_cellular"
	default:
		return "off"
	}
}

func ParseAutoSendMode(raw string) (AutoSendMode, error) {
	switch raw {
	case "", "off":
		return AutoSendOff, nil
	case "wifi_only":
		return AutoSendWifi, nil
	case "cellular_only":
		return AutoSendCellular, nil
	case "wifi_and_cellular":
		return AutoSendWifiAndCellular, nil
	default:
		return AutoSendOff, errors.Errorf("unknown auto send mode '%s'", raw)
	}
}

type Protocol string

const (
	ProtocolServer Protocol = "odk_default"
	ProtocolSheets Protocol = "google_sheets"
)

func ParseProtocol(raw string) (Protocol, error) {
	switch Protocol(raw) {
	case "", ProtocolServer:
		return ProtocolServer, nil
	case ProtocolSheets:
		return ProtocolSheets, nil
	default:
		return "", errors.Errorf("unknown protocol '%s'", raw)
	}
}

// View is read once at the start of a run.
type View struct {
	AutoSend        AutoSendMode
	DeleteAfterSend bool
	Protocol        Protocol
}

// AutoSendEnabled reports whether auto-send is enabled at the device level,
// whatever the medium.
func (v View) AutoSendEnabled() bool {
	return v.AutoSend != AutoSendOff
}

type Source interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Load reads the preferences from the given source. Missing keys fall
// back to auto-send off, no deletion and the server protocol.
func Load(ctx context.Context, source Source) (View, error) {
	var view View

	rawAutoSend, _, err := source.Get(ctx, KeyAutoSend)
	if err != nil {
		return view, errors.Wrapf(err, "could not read preference '%s'", KeyAutoSend)
	}

	if view.AutoSend, err = ParseAutoSendMode(rawAutoSend); err != nil {
		return view, errors.WithStack(err)
	}

	rawDelete, exists, err := source.Get(ctx, KeyDeleteAfterSend)
	if err != nil {
		return view, errors.Wrapf(err, "could not read preference '%s'", KeyDeleteAfterSend)
	}

	if exists && rawDelete != "" {
		if view.DeleteAfterSend, err = strconv.ParseBool(rawDelete); err != nil {
			return view, errors.Wrapf(err, "invalid value for preference '%s'", KeyDeleteAfterSend)
		}
	}

	rawProtocol, _, err := source.Get(ctx, KeyProtocol)
	if err != nil {
		return view, errors.Wrapf(err, "could not read preference '%s'", KeyProtocol)
	}

	if view.Protocol, err = ParseProtocol(rawProtocol); err != nil {
		return view, errors.WithStack(err)
	}

	return view, nil
}
