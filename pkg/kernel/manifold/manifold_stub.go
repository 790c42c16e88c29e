//go:build !manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library. Without the "manifold" build tag only this stub is
// compiled and New reports ErrUnavailable, so `cubed export --kernel
// manifold` fails cleanly instead of breaking the build.
//
// Build with: go build -tags=manifold
package manifold

import (
	"errors"

	"github.com/chazu/cubed/pkg/kernel"
)

// ErrUnavailable is returned by New when the binary was built without
// the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
