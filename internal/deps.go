package internal

import (
	"citricloud/backend/internal/service"
	"citricloud/backend/internal/store"
	"citricloud/backend/pkg/security"
)

type Deps struct {
	Users  *store.UserStore
	Argon  *security.ArgonHash
	Tokens *security.TokenIssuer
	Relay  *service.Relay
}
