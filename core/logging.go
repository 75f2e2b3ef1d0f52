package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SetupLogging routes the standard logger and gin's writers to stdout plus an
// append-only file under cfg.LogDir. The returned file stays open for the
// lifetime of the process; the caller closes it on shutdown.
func SetupLogging(cfg Config, filename string) (*os.File, error) {
	dir := firstNonEmpty(cfg.LogDir, "/var/log/movie-api")
	name := firstNonEmpty(filename, "app.log")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", name, err)
	}

	out := io.MultiWriter(os.Stdout, f)
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
	return f, nil
}
