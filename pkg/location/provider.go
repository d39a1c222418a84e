package location

import "context"

// Provider interface defines the methods for location providers
type Provider interface {
	// CheckPermission reports whether the provider may be read from. It does
	// not prompt for access.
	CheckPermission(ctx context.Context) (Permission, error)
	// GetLocation returns the next available location. Finite sources return
	// io.EOF once exhausted.
	GetLocation(ctx context.Context) (Location, error)
	Close() error
}
