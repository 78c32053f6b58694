// Package mocks provides mock implementations for testing the session
// gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe
// mocks for the auth port interfaces. Hand-written doubles for the
// same interfaces live in internal/mocks/auth; the generated mocks are
// preferred where call expectations matter.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for CredentialStore interface from internal/ports.
// This creates MockCredentialStore with methods:
// Token, SetToken, User, SetUser, Clear
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/voicedesk/console-go/internal/ports CredentialStore

// Generate mock for AuthBackend interface from internal/ports.
// This creates MockAuthBackend with methods:
// Login, Register, Logout, Profile
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_backend_mock.go github.com/voicedesk/console-go/internal/ports AuthBackend
