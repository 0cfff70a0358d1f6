package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	// PortalBusName is the well-known name of the desktop portal.
	PortalBusName = "org.freedesktop.portal.Desktop"
	// PortalPath is the object path of the desktop portal.
	PortalPath = "/org/freedesktop/portal/desktop"
	// SettingsInterface is the portal settings interface name.
	SettingsInterface = "org.freedesktop.portal.Settings"
	// SettingChangedSignal is the fully qualified SettingChanged signal name.
	SettingChangedSignal = SettingsInterface + ".SettingChanged"

	// AppearanceNamespace is the settings namespace holding color-scheme.
	AppearanceNamespace = "org.freedesktop.appearance"
	// ColorSchemeKey is the color-scheme setting key.
	// Values: 0 = no preference, 1 = prefer dark, 2 = prefer light.
	ColorSchemeKey = "color-scheme"

	errUnknownMethod    = "org.freedesktop.DBus.Error.UnknownMethod"
	errServiceUnknown   = "org.freedesktop.DBus.Error.ServiceUnknown"
	errPortalNotFound   = "org.freedesktop.portal.Error.NotFound"
	settingChangedMatch = "type='signal',interface='" + SettingsInterface + "',member='SettingChanged',path='" + PortalPath + "'"
)

// ErrSettingNotFound is returned when the portal does not know a setting.
var ErrSettingNotFound = errors.New("portal setting not found")

// SettingChange is a decoded SettingChanged signal.
type SettingChange struct {
	Namespace string
	Key       string
	Value     dbus.Variant
}

// SettingHandler is called for every SettingChanged signal.
type SettingHandler func(change SettingChange)

// parseSettingChanged decodes a SettingChanged signal.
// Returns false for any other signal or a malformed body.
func parseSettingChanged(sig *dbus.Signal) (SettingChange, bool) {
	if sig == nil || sig.Name != SettingChangedSignal {
		return SettingChange{}, false
	}
	// SettingChanged(s namespace, s key, v value)
	if len(sig.Body) < 3 {
		return SettingChange{}, false
	}

	var change SettingChange
	var ok bool
	if change.Namespace, ok = sig.Body[0].(string); !ok {
		return SettingChange{}, false
	}
	if change.Key, ok = sig.Body[1].(string); !ok {
		return SettingChange{}, false
	}
	if change.Value, ok = sig.Body[2].(dbus.Variant); !ok {
		return SettingChange{}, false
	}
	return change, true
}

// unwrapVariant strips nested variants.
// The deprecated Read method wraps the value twice (v containing v).
func unwrapVariant(v dbus.Variant) dbus.Variant {
	for {
		inner, ok := v.Value().(dbus.Variant)
		if !ok {
			return v
		}
		v = inner
	}
}

// VariantUint32 extracts an unsigned integer setting value.
func VariantUint32(v dbus.Variant) (uint32, error) {
	inner := unwrapVariant(v)
	switch val := inner.Value().(type) {
	case uint32:
		return val, nil
	case int32:
		if val < 0 {
			return 0, fmt.Errorf("negative setting value %d", val)
		}
		return uint32(val), nil
	case uint64:
		return uint32(val), nil
	case byte:
		return uint32(val), nil
	default:
		return 0, fmt.Errorf("unexpected setting type %s", inner.Signature())
	}
}

// errorName returns the D-Bus error name carried by err, if any.
func errorName(err error) string {
	var e dbus.Error
	if errors.As(err, &e) {
		return e.Name
	}
	var pe *dbus.Error
	if errors.As(err, &pe) && pe != nil {
		return pe.Name
	}
	return ""
}

func isUnknownMethod(err error) bool {
	return errorName(err) == errUnknownMethod
}
