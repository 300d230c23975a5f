package downloader

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener abre URLs con el manejador del sistema operativo
type BrowserOpener struct{}

// Open lanza el navegador por defecto con la URL
func (BrowserOpener) Open(ctx context.Context, url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		// Desktop Linux
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenBlocked, err)
	}

	return nil
}
