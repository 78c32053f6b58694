package ports_test

import (
	"github.com/voicedesk/console-go/internal/adapters/backendapi"
	"github.com/voicedesk/console-go/internal/adapters/credfile"
	"github.com/voicedesk/console-go/internal/adapters/devbackend"
	"github.com/voicedesk/console-go/internal/adapters/redisstore"
	"github.com/voicedesk/console-go/internal/ports"
)

// Compile-time checks that every adapter satisfies its port.
var (
	_ ports.CredentialStore = (*credfile.Store)(nil)
	_ ports.CredentialStore = (*redisstore.Store)(nil)
	_ ports.AuthBackend     = (*backendapi.Client)(nil)
	_ ports.AuthBackend     = (*devbackend.Backend)(nil)
)
