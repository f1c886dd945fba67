package opener

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpener() (*Opener, *[]string) {
	var opened []string
	o := New()
	o.openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	o.openFile = func(p string) error {
		opened = append(opened, p)
		return nil
	}
	return o, &opened
}

func TestOpenURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://codefend.com/docs", false},
		{"mailto", "mailto:support@example.com", false},
		{"uppercase scheme", "HTTPS://example.com", false},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, opened := newTestOpener()
			err := o.OpenURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScheme)
				assert.Empty(t, *opened)
				return
			}
			require.NoError(t, err)
			assert.Len(t, *opened, 1)
		})
	}
}

func TestOpenPath(t *testing.T) {
	o, opened := newTestOpener()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	require.NoError(t, o.OpenPath(path))
	assert.Equal(t, []string{path}, *opened)

	assert.Error(t, o.OpenPath(filepath.Join(t.TempDir(), "missing")))
}
