package codec

import (
	"crypto/ed25519"
	"fmt"

	"github.com/ElysonGreber/JKPSol/address"
)

// Transaction is a compiled message plus one signature slot per required
// signer. Unfilled slots are zero until a signer fills them.
type Transaction struct {
	Signatures []Signature `json:"signatures"`
	Message    Message     `json:"message"`
}

func NewTransaction(payer address.PublicKey, blockhash Hash, ixs ...Instruction) (*Transaction, error) {
	msg, err := CompileMessage(payer, blockhash, ixs...)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]Signature, msg.Header.NumRequiredSignatures),
		Message:    msg,
	}, nil
}

// MessageBytes returns the bytes each signer signs.
func (tx *Transaction) MessageBytes() []byte {
	return tx.Message.Marshal()
}

func (tx *Transaction) Signers() []address.PublicKey {
	return tx.Message.Signers()
}

// ID is the first signature, which the network uses as the transaction id.
func (tx *Transaction) ID() Signature {
	if len(tx.Signatures) == 0 {
		return Signature{}
	}
	return tx.Signatures[0]
}

// AddSignature places sig in the slot of signer pub.
func (tx *Transaction) AddSignature(pub address.PublicKey, sig []byte) error {
	s, err := SignatureFromBytes(sig)
	if err != nil {
		return err
	}
	for i, k := range tx.Signers() {
		if k == pub {
			if i >= len(tx.Signatures) {
				return fmt.Errorf("signature slot %d missing", i)
			}
			tx.Signatures[i] = s
			return nil
		}
	}
	return fmt.Errorf("%s is not a required signer", pub)
}

// VerifySignatures checks every signature slot against the message.
func (tx *Transaction) VerifySignatures() error {
	signers := tx.Signers()
	if len(tx.Signatures) != len(signers) {
		return fmt.Errorf("have %d signatures for %d signers", len(tx.Signatures), len(signers))
	}
	msg := tx.MessageBytes()
	for i, k := range signers {
		if tx.Signatures[i].IsZero() {
			return fmt.Errorf("missing signature for %s", k)
		}
		if !ed25519.Verify(ed25519.PublicKey(k[:]), msg, tx.Signatures[i][:]) {
			return fmt.Errorf("invalid signature for %s", k)
		}
	}
	return nil
}

// Marshal returns the wire transaction. Every required signature must be
// present.
func (tx *Transaction) Marshal() ([]byte, error) {
	signers := tx.Signers()
	if len(tx.Signatures) != len(signers) {
		return nil, fmt.Errorf("have %d signatures for %d signers", len(tx.Signatures), len(signers))
	}
	for i, s := range tx.Signatures {
		if s.IsZero() {
			return nil, fmt.Errorf("missing signature for %s", signers[i])
		}
	}
	msg := tx.MessageBytes()
	out := make([]byte, 0, 3+len(tx.Signatures)*SignatureLength+len(msg))
	out = appendCompactU16(out, len(tx.Signatures))
	for _, s := range tx.Signatures {
		out = append(out, s[:]...)
	}
	return append(out, msg...), nil
}

func DecodeTransaction(b []byte) (*Transaction, error) {
	nSig, off, err := readCompactU16(b)
	if err != nil {
		return nil, fmt.Errorf("invalid tx signatures: %w", err)
	}
	if len(b[off:]) < nSig*SignatureLength {
		return nil, fmt.Errorf("invalid tx: truncated signatures")
	}
	tx := &Transaction{Signatures: make([]Signature, nSig)}
	for i := range tx.Signatures {
		copy(tx.Signatures[i][:], b[off:off+SignatureLength])
		off += SignatureLength
	}
	msg, n, err := decodeMessage(b[off:])
	if err != nil {
		return nil, fmt.Errorf("invalid tx: %w", err)
	}
	if off+n != len(b) {
		return nil, fmt.Errorf("invalid tx: %d trailing bytes", len(b)-off-n)
	}
	if int(msg.Header.NumRequiredSignatures) != nSig {
		return nil, fmt.Errorf("invalid tx: header wants %d signatures, have %d", msg.Header.NumRequiredSignatures, nSig)
	}
	tx.Message = msg
	return tx, nil
}
