// Package discovery locates the single input image dropped next to the tool.
package discovery

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNoInput is returned when none of the candidate files exist.
var ErrNoInput = errors.New("no input file found")

// BaseName is the file name, without extension, the operator is asked to use.
const BaseName = "input"

// Extensions are tried in order. The first three match what operators are
// told to use; the rest are accepted as well.
var Extensions = []string{
	".jpg", ".jpeg", ".png",
	".webp", ".heic", ".heif", ".bmp", ".tif", ".tiff", ".gif",
}

// Candidates returns the file names FindInput checks, in order.
func Candidates() []string {
	names := make([]string, len(Extensions))
	for i, ext := range Extensions {
		names[i] = BaseName + ext
	}
	return names
}

// FindInput returns the path of the first candidate that exists in dir as
// a regular file.
func FindInput(dir string) (string, error) {
	for _, name := range Candidates() {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable candidate")
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		return path, nil
	}
	return "", errors.Wrapf(ErrNoInput, "in %s", dir)
}
