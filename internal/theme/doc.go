// Package theme resolves the desktop color-scheme preference and notifies
// subscribers when it changes. A Source is chosen once by Detect: the
// freedesktop Settings portal when it is reachable, the GTK settings.ini
// file otherwise, and a fixed or terminal-derived scheme as a last resort.
package theme
