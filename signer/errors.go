package signer

import errorsmod "cosmossdk.io/errors"

const ModuleName = "signer"

var (
	ErrRejected   = errorsmod.Register(ModuleName, 2, "signature request rejected")
	ErrNotSigner  = errorsmod.Register(ModuleName, 3, "key is not a required signer")
	ErrInvalidKey = errorsmod.Register(ModuleName, 4, "invalid keypair")
)
