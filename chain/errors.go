package chain

import errorsmod "cosmossdk.io/errors"

const ModuleName = "chain"

var (
	ErrAccountNotFound     = errorsmod.Register(ModuleName, 2, "account not found")
	ErrRPC                 = errorsmod.Register(ModuleName, 3, "rpc request failed")
	ErrTransactionFailed   = errorsmod.Register(ModuleName, 4, "transaction failed")
	ErrConfirmTimeout      = errorsmod.Register(ModuleName, 5, "confirmation timed out")
	ErrTransactionNotFound = errorsmod.Register(ModuleName, 6, "transaction not found")
	ErrInvalidCommitment   = errorsmod.Register(ModuleName, 7, "invalid commitment")
)
