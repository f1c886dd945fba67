package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

func TestDialogsRequireContext(t *testing.T) {
	d := New()

	_, err := d.Open(OpenOptions{})
	assert.ErrorIs(t, err, ErrNoContext)
	_, err = d.OpenMultiple(OpenOptions{})
	assert.ErrorIs(t, err, ErrNoContext)
	_, err = d.Save(SaveOptions{})
	assert.ErrorIs(t, err, ErrNoContext)
	_, err = d.Message(MessageOptions{})
	assert.ErrorIs(t, err, ErrNoContext)
	_, err = d.Confirm("t", "m")
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestToWailsFilters(t *testing.T) {
	got := toWailsFilters([]Filter{
		{Name: "Reports", Extensions: []string{"pdf", ".csv"}},
		{Name: "Empty"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Reports", got[0].DisplayName)
	assert.Equal(t, "*.pdf;*.csv", got[0].Pattern)
}

func TestOpenSelectsDirectoryDialog(t *testing.T) {
	d := New()
	d.ctx = context.Background()

	var used string
	d.openFile = func(context.Context, runtime.OpenDialogOptions) (string, error) {
		used = "file"
		return "/tmp/a.txt", nil
	}
	d.openDir = func(context.Context, runtime.OpenDialogOptions) (string, error) {
		used = "dir"
		return "/tmp", nil
	}

	path, err := d.Open(OpenOptions{Directory: true})
	require.NoError(t, err)
	assert.Equal(t, "dir", used)
	assert.Equal(t, "/tmp", path)

	path, err = d.Open(OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, "file", used)
	assert.Equal(t, "/tmp/a.txt", path)
}

func TestMessageKinds(t *testing.T) {
	tests := []struct {
		kind string
		want runtime.DialogType
	}{
		{"info", runtime.InfoDialog},
		{"warning", runtime.WarningDialog},
		{"ERROR", runtime.ErrorDialog},
		{"", runtime.InfoDialog},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, dialogType(tt.kind))
		})
	}
}

func TestConfirm(t *testing.T) {
	d := New()
	d.ctx = context.Background()

	var got runtime.MessageDialogOptions
	answer := "Yes"
	d.message = func(_ context.Context, opts runtime.MessageDialogOptions) (string, error) {
		got = opts
		return answer, nil
	}

	ok, err := d.Confirm("Install update", "Restart now?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, runtime.QuestionDialog, got.Type)

	answer = "No"
	ok, err = d.Confirm("Install update", "Restart now?")
	require.NoError(t, err)
	assert.False(t, ok)
}
