// Package dialog shows native file and message dialogs.
package dialog

import (
	"context"
	"errors"
	"strings"

	"codefendpanel/internal/plugin"

	"github.com/ncruces/zenity"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// ErrNoContext is returned when a dialog is requested before startup
var ErrNoContext = errors.New("dialogs are not available before startup")

// Filter restricts selectable files. Extensions are given without dots.
type Filter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenOptions configures an open dialog
type OpenOptions struct {
	Title       string   `json:"title"`
	DefaultPath string   `json:"defaultPath"`
	Directory   bool     `json:"directory"`
	Filters     []Filter `json:"filters"`
}

// SaveOptions configures a save dialog
type SaveOptions struct {
	Title           string   `json:"title"`
	DefaultPath     string   `json:"defaultPath"`
	DefaultFilename string   `json:"defaultFilename"`
	Filters         []Filter `json:"filters"`
}

// MessageOptions configures a message box. Kind is info, warning or error.
type MessageOptions struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// Dialogs shows dialogs through the Wails runtime
type Dialogs struct {
	ctx context.Context

	openFile  func(context.Context, runtime.OpenDialogOptions) (string, error)
	openFiles func(context.Context, runtime.OpenDialogOptions) ([]string, error)
	openDir   func(context.Context, runtime.OpenDialogOptions) (string, error)
	saveFile  func(context.Context, runtime.SaveDialogOptions) (string, error)
	message   func(context.Context, runtime.MessageDialogOptions) (string, error)
}

// New creates the dialog service
func New() *Dialogs {
	return &Dialogs{
		openFile:  runtime.OpenFileDialog,
		openFiles: runtime.OpenMultipleFilesDialog,
		openDir:   runtime.OpenDirectoryDialog,
		saveFile:  runtime.SaveFileDialog,
		message:   runtime.MessageDialog,
	}
}

// Plugin registers the service as the "dialog" plugin
func Plugin(d *Dialogs) plugin.Plugin {
	return plugin.Plugin{
		Name:    "dialog",
		Service: d,
		Start: func(ctx context.Context) error {
			d.ctx = ctx
			return nil
		},
	}
}

func toWailsFilters(filters []Filter) []runtime.FileFilter {
	out := make([]runtime.FileFilter, 0, len(filters))
	for _, f := range filters {
		if len(f.Extensions) == 0 {
			continue
		}
		patterns := make([]string, len(f.Extensions))
		for i, ext := range f.Extensions {
			patterns[i] = "*." + strings.TrimPrefix(ext, ".")
		}
		out = append(out, runtime.FileFilter{
			DisplayName: f.Name,
			Pattern:     strings.Join(patterns, ";"),
		})
	}
	return out
}

func (o OpenOptions) wails() runtime.OpenDialogOptions {
	return runtime.OpenDialogOptions{
		Title:                o.Title,
		DefaultDirectory:     o.DefaultPath,
		Filters:              toWailsFilters(o.Filters),
		CanCreateDirectories: o.Directory,
	}
}

// Open asks for a single file, or a directory when Directory is set.
// An empty path means the user cancelled.
func (d *Dialogs) Open(opts OpenOptions) (string, error) {
	if d.ctx == nil {
		return "", ErrNoContext
	}
	if opts.Directory {
		return d.openDir(d.ctx, opts.wails())
	}
	return d.openFile(d.ctx, opts.wails())
}

// OpenMultiple asks for one or more files
func (d *Dialogs) OpenMultiple(opts OpenOptions) ([]string, error) {
	if d.ctx == nil {
		return nil, ErrNoContext
	}
	return d.openFiles(d.ctx, opts.wails())
}

// Save asks for a destination path
func (d *Dialogs) Save(opts SaveOptions) (string, error) {
	if d.ctx == nil {
		return "", ErrNoContext
	}
	return d.saveFile(d.ctx, runtime.SaveDialogOptions{
		Title:                opts.Title,
		DefaultDirectory:     opts.DefaultPath,
		DefaultFilename:      opts.DefaultFilename,
		Filters:              toWailsFilters(opts.Filters),
		CanCreateDirectories: true,
	})
}

func dialogType(kind string) runtime.DialogType {
	switch strings.ToLower(kind) {
	case "warning":
		return runtime.WarningDialog
	case "error":
		return runtime.ErrorDialog
	default:
		return runtime.InfoDialog
	}
}

// Message shows a message box and returns the pressed button
func (d *Dialogs) Message(opts MessageOptions) (string, error) {
	if d.ctx == nil {
		return "", ErrNoContext
	}
	return d.message(d.ctx, runtime.MessageDialogOptions{
		Type:    dialogType(opts.Kind),
		Title:   opts.Title,
		Message: opts.Message,
	})
}

// Confirm asks a yes/no question
func (d *Dialogs) Confirm(title, message string) (bool, error) {
	if d.ctx == nil {
		return false, ErrNoContext
	}
	answer, err := d.message(d.ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{"Yes", "No"},
		DefaultButton: "Yes",
		CancelButton:  "No",
	})
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "yes") || strings.EqualFold(answer, "ok"), nil
}

// Fatal shows an error box without the webview. It is used when startup
// fails before or while the main window is created.
func Fatal(title, message string) error {
	return zenity.Error(message, zenity.Title(title), zenity.ErrorIcon)
}
