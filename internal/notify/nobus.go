//go:build !linux

package notify

func newBusSender() (sender, error) {
	return nil, errNoBus
}
