package dbus

import (
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingChanged(t *testing.T) {
	tests := []struct {
		name   string
		signal *dbus.Signal
		wantOK bool
		want   SettingChange
	}{
		{
			name: "color scheme change",
			signal: &dbus.Signal{
				Name: SettingChangedSignal,
				Body: []interface{}{AppearanceNamespace, ColorSchemeKey, dbus.MakeVariant(uint32(1))},
			},
			wantOK: true,
			want: SettingChange{
				Namespace: AppearanceNamespace,
				Key:       ColorSchemeKey,
				Value:     dbus.MakeVariant(uint32(1)),
			},
		},
		{
			name:   "nil signal",
			signal: nil,
		},
		{
			name: "other signal",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.NameOwnerChanged",
				Body: []interface{}{"a", "b", "c"},
			},
		},
		{
			name: "short body",
			signal: &dbus.Signal{
				Name: SettingChangedSignal,
				Body: []interface{}{AppearanceNamespace},
			},
		},
		{
			name: "value not a variant",
			signal: &dbus.Signal{
				Name: SettingChangedSignal,
				Body: []interface{}{AppearanceNamespace, ColorSchemeKey, uint32(1)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSettingChanged(tt.signal)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want.Namespace, got.Namespace)
				assert.Equal(t, tt.want.Key, got.Key)
				assert.Equal(t, tt.want.Value.Value(), got.Value.Value())
			}
		})
	}
}

func TestVariantUint32(t *testing.T) {
	tests := []struct {
		name    string
		value   dbus.Variant
		want    uint32
		wantErr bool
	}{
		{"ReadOne value", dbus.MakeVariant(uint32(2)), 2, false},
		{"Read double wrapped", dbus.MakeVariant(dbus.MakeVariant(uint32(1))), 1, false},
		{"int32", dbus.MakeVariant(int32(1)), 1, false},
		{"negative int32", dbus.MakeVariant(int32(-1)), 0, true},
		{"byte", dbus.MakeVariant(byte(2)), 2, false},
		{"string", dbus.MakeVariant("dark"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VariantUint32(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorName(t *testing.T) {
	unknown := dbus.Error{Name: errUnknownMethod}

	assert.True(t, isUnknownMethod(unknown))
	assert.True(t, isUnknownMethod(&unknown))
	assert.True(t, isUnknownMethod(fmt.Errorf("wrapped: %w", unknown)))
	assert.False(t, isUnknownMethod(dbus.Error{Name: errPortalNotFound}))
	assert.False(t, isUnknownMethod(fmt.Errorf("plain error")))
	assert.Equal(t, "", errorName(nil))
}

func TestReadWithoutConnection(t *testing.T) {
	p := NewSettingsPortal(nil)

	_, err := p.Read(t.Context(), AppearanceNamespace, ColorSchemeKey)
	require.Error(t, err)

	_, err = p.Subscribe(func(SettingChange) {})
	require.Error(t, err)

	assert.NoError(t, p.Close())
}
