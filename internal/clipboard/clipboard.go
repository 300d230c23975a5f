package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// ErrUnsupported indica que no hay herramienta de portapapeles instalada
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Reader lee el portapapeles una sola vez por llamada
type Reader struct {
	read   func() (string, error)
	logger *logrus.Logger
}

// NewReader crea un lector del portapapeles del sistema
func NewReader(logger *logrus.Logger) *Reader {
	read := clipboard.ReadAll
	if clipboard.Unsupported {
		read = func() (string, error) { return "", ErrUnsupported }
	}
	return &Reader{read: read, logger: logger}
}

// ReadOnce retorna el texto del portapapeles. Sin permiso, sin herramienta
// de portapapeles o vacío retorna ("", false) y el usuario escribe a mano.
func (r *Reader) ReadOnce() (string, bool) {
	text, err := r.read()
	if err != nil {
		r.logger.WithError(err).Debug("Clipboard read failed")
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	return text, true
}
