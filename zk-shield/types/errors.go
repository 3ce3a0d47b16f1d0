package types

import (
	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
)

var (
	ErrFieldOverflow     = utils.ErrFieldOverflow
	ErrMalformedPoint    = errors.New("malformed curve point")
	ErrTreeFull          = errors.New("merkle tree is full")
	ErrLeafNotInserted   = errors.New("leaf not inserted")
	ErrAmountMismatch    = errors.New("amount mismatch")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRootMismatch      = errors.New("merkle root mismatch")

	ErrCommitmentMismatch    = errors.New("commitment mismatch")
	ErrNullifierMismatch     = errors.New("nullifier mismatch")
	ErrInvalidInclusionProof = errors.New("invalid inclusion proof")
	ErrTokenMismatch         = errors.New("token mint mismatch")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidInputCount     = errors.New("invalid number of input notes")
	ErrUnknownRoot           = errors.New("unknown merkle root")
	ErrNullifierUsed         = errors.New("nullifier has already been used")
	ErrDuplicateNullifier    = errors.New("duplicate nullifier in transaction")
	ErrInvalidProof          = errors.New("invalid proof")
	ErrInvalidVerifyingKey   = errors.New("invalid verifying key")
	ErrVerifierMissing       = errors.New("verifying key has not been configured")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
)
