package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// busConn is the part of *dbus.Conn used by SettingsPortal.
type busConn interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	BusObject() dbus.BusObject
}

// SettingsPortal reads desktop settings from the portal and fans out
// SettingChanged signals to subscribers.
type SettingsPortal struct {
	conn   busConn
	obj    dbus.BusObject
	logger *slog.Logger

	mu         sync.Mutex
	handlers   map[uint64]SettingHandler
	nextID     uint64
	signals    chan *dbus.Signal
	matching   bool
	legacyRead bool
}

// NewSettingsPortal creates a portal client. Call Connect before use.
func NewSettingsPortal(logger *slog.Logger) *SettingsPortal {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsPortal{
		logger:   logger,
		handlers: make(map[uint64]SettingHandler),
	}
}

// Connect attaches to the session bus.
func (p *SettingsPortal) Connect() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	p.attach(conn, conn.Object(PortalBusName, PortalPath))
	return nil
}

func (p *SettingsPortal) attach(conn busConn, obj dbus.BusObject) {
	p.conn = conn
	p.obj = obj
}

// Read returns the value of a portal setting with all variant wrapping removed.
// It uses ReadOne and falls back to the deprecated Read method on portals
// that predate version 2 of the Settings interface.
func (p *SettingsPortal) Read(ctx context.Context, namespace, key string) (dbus.Variant, error) {
	if p.obj == nil {
		return dbus.Variant{}, fmt.Errorf("not connected to D-Bus")
	}

	p.mu.Lock()
	legacy := p.legacyRead
	p.mu.Unlock()

	if !legacy {
		var value dbus.Variant
		err := p.obj.CallWithContext(ctx, SettingsInterface+".ReadOne", 0, namespace, key).Store(&value)
		if err == nil {
			return unwrapVariant(value), nil
		}
		if !isUnknownMethod(err) {
			return dbus.Variant{}, p.readError(namespace, key, err)
		}

		p.logger.Debug("ReadOne not available, falling back to Read")
		p.mu.Lock()
		p.legacyRead = true
		p.mu.Unlock()
	}

	var value dbus.Variant
	if err := p.obj.CallWithContext(ctx, SettingsInterface+".Read", 0, namespace, key).Store(&value); err != nil {
		return dbus.Variant{}, p.readError(namespace, key, err)
	}
	return unwrapVariant(value), nil
}

func (p *SettingsPortal) readError(namespace, key string, err error) error {
	switch errorName(err) {
	case errPortalNotFound:
		return fmt.Errorf("%s.%s: %w", namespace, key, ErrSettingNotFound)
	case errServiceUnknown:
		return fmt.Errorf("desktop portal not running: %w", err)
	}
	return fmt.Errorf("failed to read %s.%s: %w", namespace, key, err)
}

// ReadUint32 reads an unsigned integer setting such as color-scheme.
func (p *SettingsPortal) ReadUint32(ctx context.Context, namespace, key string) (uint32, error) {
	v, err := p.Read(ctx, namespace, key)
	if err != nil {
		return 0, err
	}
	return VariantUint32(v)
}

// Subscribe registers a handler for SettingChanged signals.
// The returned function removes the handler.
func (p *SettingsPortal) Subscribe(handler SettingHandler) (func(), error) {
	if p.conn == nil {
		return nil, fmt.Errorf("not connected to D-Bus")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.matching {
		if err := p.addMatch(); err != nil {
			return nil, err
		}
		p.signals = make(chan *dbus.Signal, 16)
		p.conn.Signal(p.signals)
		go p.dispatch(p.signals)
		p.matching = true
	}

	p.nextID++
	id := p.nextID
	p.handlers[id] = handler

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}, nil
}

// addMatch installs the signal match rule, preferring the typed
// AddMatchSignal API and falling back to a raw AddMatch call.
func (p *SettingsPortal) addMatch() error {
	err := p.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(PortalPath),
		dbus.WithMatchInterface(SettingsInterface),
		dbus.WithMatchMember("SettingChanged"),
	)
	if err == nil {
		p.logger.Debug("subscribed to portal SettingChanged")
		return nil
	}

	p.logger.Warn("AddMatchSignal failed, trying AddMatch", "error", err)
	if err := p.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, settingChangedMatch).Err; err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}
	p.logger.Debug("subscribed to portal SettingChanged using AddMatch")
	return nil
}

// dispatch delivers signals until the channel is closed.
func (p *SettingsPortal) dispatch(ch <-chan *dbus.Signal) {
	for sig := range ch {
		change, ok := parseSettingChanged(sig)
		if !ok {
			continue
		}

		p.mu.Lock()
		handlers := make([]SettingHandler, 0, len(p.handlers))
		for _, h := range p.handlers {
			handlers = append(handlers, h)
		}
		p.mu.Unlock()

		p.logger.Debug("portal setting changed", "namespace", change.Namespace, "key", change.Key)
		for _, h := range handlers {
			h(change)
		}
	}
}

// Close stops signal delivery. The shared session bus connection is left open.
func (p *SettingsPortal) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.matching {
		return nil
	}
	p.matching = false

	p.conn.RemoveSignal(p.signals)
	close(p.signals)
	p.signals = nil

	if err := p.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(PortalPath),
		dbus.WithMatchInterface(SettingsInterface),
		dbus.WithMatchMember("SettingChanged"),
	); err != nil {
		p.logger.Debug("failed to remove match rule", "error", err)
	}
	return nil
}
