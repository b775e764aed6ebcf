package directory

import errorsmod "cosmossdk.io/errors"

const ModuleName = "directory"

var (
	ErrInvalidNickname = errorsmod.Register(ModuleName, 2, "invalid nickname")
	ErrDirectory       = errorsmod.Register(ModuleName, 3, "directory unavailable")
	ErrUnknownBackend  = errorsmod.Register(ModuleName, 4, "unknown directory backend")
)
