//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	appID   = "tracksearch"
	appName = "Tracksearch"

	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = "org.freedesktop.Notifications.Notify"
)

// busSender posts notifications to the freedesktop notification service.
type busSender struct {
	obj dbus.BusObject
}

func newBusSender() (sender, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoBus, err)
	}
	return &busSender{obj: conn.Object(notificationsDest, notificationsPath)}, nil
}

// send calls Notify(app_name, replaces_id, icon, summary, body, actions,
// hints, timeout). Every message is a new notification.
func (b *busSender) send(m message) error {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(m.urgency)),
		"desktop-entry": dbus.MakeVariant(appID),
	}
	call := b.obj.Call(notificationsNotify, 0,
		appName, uint32(0), m.icon, m.summary, m.body, []string{}, hints, m.timeout)
	return call.Err
}
