package store

import "errors"

var (
	// ErrNotFound is returned when a tenant or user record does not exist.
	ErrNotFound = errors.New("config record not found")

	// ErrDefaultTenantProtected is returned on attempts to delete the
	// default tenant.
	ErrDefaultTenantProtected = errors.New("default tenant cannot be deleted")

	// ErrUnknownTenant is returned when creating a user under a tenant
	// that does not exist.
	ErrUnknownTenant = errors.New("unknown tenant")
)
