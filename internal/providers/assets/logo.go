// Package assets resolves the firm logo used on rendered invoices.
package assets

import (
	"encoding/base64"
	"os"

	"go.uber.org/zap"
)

// placeholderPNG is a 1x1 transparent PNG used when no logo is configured
// or the configured file cannot be read.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// Resolver loads logo bytes from a configured path, falling back to an
// embedded placeholder so document rendering never blocks on a missing
// asset.
type Resolver struct {
	path string
	log  *zap.Logger
}

func NewResolver(path string, log *zap.Logger) *Resolver {
	return &Resolver{path: path, log: log.Named("providers.assets")}
}

// Logo returns the logo image bytes. It never fails; a read error is
// logged and the placeholder returned.
func (r *Resolver) Logo() []byte {
	if r.path != "" {
		data, err := os.ReadFile(r.path)
		if err == nil && len(data) > 0 {
			return data
		}
		if err != nil {
			r.log.Warn("failed to read logo, using placeholder", zap.String("path", r.path), zap.Error(err))
		}
	}
	return Placeholder()
}

// Placeholder returns the embedded fallback image.
func Placeholder() []byte {
	data, err := base64.StdEncoding.DecodeString(placeholderPNG)
	if err != nil {
		// The constant is valid by construction.
		return nil
	}
	return data
}
