package session

import errorsmod "cosmossdk.io/errors"

const ModuleName = "session"

var (
	ErrNotConnected = errorsmod.Register(ModuleName, 2, "wallet not connected")
	ErrSync         = errorsmod.Register(ModuleName, 3, "sync failed")
	ErrDirectory    = errorsmod.Register(ModuleName, 4, "leaderboard sync failed")
	ErrNoDirectory  = errorsmod.Register(ModuleName, 5, "no leaderboard directory configured")
)
