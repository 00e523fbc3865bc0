package secret

import "errors"

var (
	// ErrInvalidRegistration is returned for an empty name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")

	// ErrProviderExists is returned when a name is registered twice.
	ErrProviderExists = errors.New("secret: provider already registered")

	// ErrUnknownProvider is returned for a reference to an unregistered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrEmptySecret is returned by strict resolvers when a reference resolves to "".
	ErrEmptySecret = errors.New("secret: empty value")
)
