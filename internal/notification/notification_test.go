package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	title, message, icon string
}

func newTestNotifier(enabled bool) (*Notifier, *[]sent) {
	var out []sent
	n := New(enabled)
	n.send = func(title, message, icon string) error {
		out = append(out, sent{title, message, icon})
		return nil
	}
	return n, &out
}

func TestSend(t *testing.T) {
	n, out := newTestNotifier(true)

	id, err := n.Send(Options{Title: "Scan finished", Body: "3 issues found"})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "id should be a uuid")
	require.Len(t, *out, 1)
	assert.Equal(t, sent{"Scan finished", "3 issues found", ""}, (*out)[0])
}

func TestSendDefaultsTitleAndTruncatesBody(t *testing.T) {
	n, out := newTestNotifier(true)

	_, err := n.Send(Options{Body: strings.Repeat("x", maxBodyLength+50)})
	require.NoError(t, err)

	got := (*out)[0]
	assert.Equal(t, appName, got.title)
	assert.Len(t, got.message, maxBodyLength+3)
	assert.True(t, strings.HasSuffix(got.message, "..."))
}

func TestSendRejected(t *testing.T) {
	n, out := newTestNotifier(false)

	_, err := n.Send(Options{Title: "hidden"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, PermissionDenied, n.RequestPermission())

	n.SetEnabled(true)
	_, err = n.Send(Options{Title: "  ", Body: ""})
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Empty(t, *out)
	assert.Equal(t, PermissionGranted, n.RequestPermission())
}

func TestSendDeliveryFailure(t *testing.T) {
	n := New(true)
	n.send = func(title, message, icon string) error { return errors.New("dbus unavailable") }

	id, err := n.Send(Options{Title: "x"})
	assert.Error(t, err)
	assert.Empty(t, id)
}
