package submit

import errorsmod "cosmossdk.io/errors"

const ModuleName = "submit"

var (
	ErrInFlight       = errorsmod.Register(ModuleName, 2, "a submission is already in flight")
	ErrInvalidMove    = errorsmod.Register(ModuleName, 3, "invalid move")
	ErrSignRejected   = errorsmod.Register(ModuleName, 4, "signature rejected")
	ErrSubmitRejected = errorsmod.Register(ModuleName, 5, "submission rejected")
	ErrNotConfirmed   = errorsmod.Register(ModuleName, 6, "submission not confirmed")
	ErrResync         = errorsmod.Register(ModuleName, 7, "resync after confirmation failed")
	ErrBuild          = errorsmod.Register(ModuleName, 8, "cannot build submission")
)
