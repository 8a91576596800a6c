package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method string
	args   []interface{}
}

type fakeBus struct {
	calls  []recordedCall
	nextID uint32
	err    error
}

func (f *fakeBus) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, recordedCall{method: method, args: args})
	if f.err != nil {
		return &dbus.Call{Err: f.err}
	}
	f.nextID++
	return &dbus.Call{Body: []interface{}{f.nextID}}
}

func TestMuteChangedPostsNotification(t *testing.T) {
	bus := &fakeBus{}
	n := newNotifier(bus, true, nil)

	n.MuteChanged(true)

	require.Len(t, bus.calls, 1)
	c := bus.calls[0]
	assert.Equal(t, "org.freedesktop.Notifications.Notify", c.method)
	require.Len(t, c.args, 8)
	assert.Equal(t, "micmute", c.args[0])
	assert.Equal(t, uint32(0), c.args[1])
	assert.Equal(t, "Microphone muted", c.args[3])
	assert.Equal(t, int32(2000), c.args[7])
}

func TestNotificationsReplaceEachOther(t *testing.T) {
	bus := &fakeBus{}
	n := newNotifier(bus, true, nil)

	n.MuteChanged(true)
	n.MuteChanged(false)

	require.Len(t, bus.calls, 2)
	assert.Equal(t, uint32(1), bus.calls[1].args[1], "second notification replaces the first")
	assert.Equal(t, "Microphone live", bus.calls[1].args[3])
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	bus := &fakeBus{}
	n := newNotifier(bus, false, nil)

	n.MuteChanged(true)
	assert.Empty(t, bus.calls)

	n.SetEnabled(true)
	n.MuteChanged(true)
	assert.Len(t, bus.calls, 1)
}

func TestCallErrorKeepsReplaceID(t *testing.T) {
	bus := &fakeBus{}
	n := newNotifier(bus, true, nil)
	n.MuteChanged(true)

	bus.err = errors.New("org.freedesktop.DBus.Error.ServiceUnknown")
	n.MuteChanged(false)
	err := n.post("x", "")
	assert.Error(t, err)

	bus.err = nil
	n.MuteChanged(true)
	assert.Equal(t, uint32(1), bus.calls[len(bus.calls)-1].args[1])
}
