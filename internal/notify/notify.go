// Package notify tells the desktop when the library has been indexed.
package notify

import (
	"errors"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// indexedTimeout is how long the "library indexed" notification stays up, in ms.
const indexedTimeout = 5000

var errNoBus = errors.New("no desktop notification bus")

// urgency is a freedesktop notification priority level.
type urgency byte

const urgencyLow urgency = 0

// message is one desktop notification.
type message struct {
	summary string
	body    string
	icon    string // icon name or image path
	timeout int32  // ms, -1 = server default
	urgency urgency
}

// sender delivers messages to the desktop.
type sender interface {
	send(m message) error
}

type nopSender struct{}

func (nopSender) send(message) error { return nil }

// IndexedNotifier tells the desktop that a library rebuild finished.
type IndexedNotifier struct {
	s   sender
	log *zap.Logger

	// sent is called after each notification attempt, for tests.
	sent func(error)
}

// New returns a notifier using the session bus. Without a bus, notifications
// are dropped. A nil log discards errors.
func New(log *zap.Logger) *IndexedNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "notify"))

	s, err := newBusSender()
	if err != nil {
		log.Debug("desktop notifications disabled", zap.Error(err))
		s = nopSender{}
	}
	return &IndexedNotifier{s: s, log: log}
}

// DataIndexed sends the notification in the background. Failures are
// logged only.
func (in *IndexedNotifier) DataIndexed(tracks uint64) {
	m := indexedMessage(tracks)
	go func() {
		err := in.s.send(m)
		if err != nil {
			in.log.Warn("sending indexed notification", zap.Error(err))
		}
		if in.sent != nil {
			in.sent(err)
		}
	}()
}

func indexedMessage(tracks uint64) message {
	return message{
		summary: "Library indexed",
		body:    humanize.Comma(int64(tracks)) + " tracks available",
		icon:    "audio-x-generic",
		timeout: indexedTimeout,
		urgency: urgencyLow,
	}
}
