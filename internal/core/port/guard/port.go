package guard

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kondukto-io/pinguard/internal/core/domain"
)

type UseCase interface {
	// Resolve resolves and checks the host of u without modifying it
	Resolve(ctx context.Context, u *url.URL) (*domain.ResolvedTarget, error)
	// Pin resolves and checks req, then rewrites it to connect to the
	// selected address while keeping the original virtual host
	Pin(ctx context.Context, req *http.Request) (*domain.ResolvedTarget, error)
}
