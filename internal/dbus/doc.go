// Package dbus is a small client for the org.freedesktop.portal.Settings
// interface. It reads appearance settings from the desktop portal and
// delivers SettingChanged signals to registered handlers.
package dbus
