package game

import (
	"errors"

	"github.com/ncruces/zenity"
)

// PickFunc asks the user for one audio file and returns its path.
type PickFunc func() (string, error)

// errCanceled is returned by a PickFunc when the user dismisses the dialog.
var errCanceled = zenity.ErrCanceled

// SelectAudioFile shows the native file dialog.
func SelectAudioFile() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac", "*.ogg", "*.aif", "*.aiff"},
		}},
	)
}

func canceled(err error) bool { return errors.Is(err, errCanceled) }
