package codec

import (
	"fmt"

	"github.com/ElysonGreber/JKPSol/address"
)

type AccountMeta struct {
	PublicKey  address.PublicKey `json:"pubkey"`
	IsSigner   bool              `json:"isSigner"`
	IsWritable bool              `json:"isWritable"`
}

// Instruction is one program invocation. The account order is part of the
// program's interface and is preserved verbatim in the compiled message.
type Instruction struct {
	ProgramID address.PublicKey `json:"programId"`
	Accounts  []AccountMeta     `json:"accounts"`
	Data      []byte            `json:"data"`
}

type MessageHeader struct {
	NumRequiredSignatures       uint8 `json:"numRequiredSignatures"`
	NumReadonlySignedAccounts   uint8 `json:"numReadonlySignedAccounts"`
	NumReadonlyUnsignedAccounts uint8 `json:"numReadonlyUnsignedAccounts"`
}

type CompiledInstruction struct {
	ProgramIDIndex uint8   `json:"programIdIndex"`
	Accounts       []uint8 `json:"accounts"`
	Data           []byte  `json:"data"`
}

// Message is the legacy (unversioned) message: the exact bytes every signer
// signs.
type Message struct {
	Header          MessageHeader         `json:"header"`
	AccountKeys     []address.PublicKey   `json:"accountKeys"`
	RecentBlockhash Hash                  `json:"recentBlockhash"`
	Instructions    []CompiledInstruction `json:"instructions"`
}

// CompileMessage dedupes every referenced account, merging signer/writable
// flags, and orders them fee payer first, then writable signers, readonly
// signers, writable non-signers and readonly non-signers. Order inside each
// group is first appearance.
func CompileMessage(payer address.PublicKey, blockhash Hash, ixs ...Instruction) (Message, error) {
	if payer.IsZero() {
		return Message{}, fmt.Errorf("compile: missing fee payer")
	}
	if blockhash.IsZero() {
		return Message{}, fmt.Errorf("compile: missing recent blockhash")
	}
	if len(ixs) == 0 {
		return Message{}, fmt.Errorf("compile: no instructions")
	}

	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true}}
	seen := map[address.PublicKey]int{payer: 0}
	merge := func(m AccountMeta) {
		if i, ok := seen[m.PublicKey]; ok {
			metas[i].IsSigner = metas[i].IsSigner || m.IsSigner
			metas[i].IsWritable = metas[i].IsWritable || m.IsWritable
			return
		}
		seen[m.PublicKey] = len(metas)
		metas = append(metas, m)
	}
	for _, ix := range ixs {
		for _, a := range ix.Accounts {
			merge(a)
		}
		merge(AccountMeta{PublicKey: ix.ProgramID})
	}

	ordered := make([]AccountMeta, 0, len(metas))
	for _, group := range [4]struct{ signer, writable bool }{
		{true, true}, {true, false}, {false, true}, {false, false},
	} {
		for _, m := range metas {
			if m.IsSigner == group.signer && m.IsWritable == group.writable {
				ordered = append(ordered, m)
			}
		}
	}
	if len(ordered) > 256 {
		return Message{}, fmt.Errorf("compile: %d accounts exceeds 256", len(ordered))
	}

	msg := Message{RecentBlockhash: blockhash}
	index := make(map[address.PublicKey]uint8, len(ordered))
	for i, m := range ordered {
		index[m.PublicKey] = uint8(i)
		msg.AccountKeys = append(msg.AccountKeys, m.PublicKey)
		switch {
		case m.IsSigner:
			msg.Header.NumRequiredSignatures++
			if !m.IsWritable {
				msg.Header.NumReadonlySignedAccounts++
			}
		case !m.IsWritable:
			msg.Header.NumReadonlyUnsignedAccounts++
		}
	}

	for _, ix := range ixs {
		ci := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			Accounts:       make([]uint8, 0, len(ix.Accounts)),
			Data:           append([]byte(nil), ix.Data...),
		}
		for _, a := range ix.Accounts {
			ci.Accounts = append(ci.Accounts, index[a.PublicKey])
		}
		msg.Instructions = append(msg.Instructions, ci)
	}
	return msg, nil
}

// Marshal returns the wire encoding of the message (the sign bytes).
func (m Message) Marshal() []byte {
	n := 3 + 3 + len(m.AccountKeys)*address.PublicKeyLength + HashLength + 3
	for _, ix := range m.Instructions {
		n += 1 + 3 + len(ix.Accounts) + 3 + len(ix.Data)
	}
	out := make([]byte, 0, n)
	out = append(out, m.Header.NumRequiredSignatures, m.Header.NumReadonlySignedAccounts, m.Header.NumReadonlyUnsignedAccounts)
	out = appendCompactU16(out, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		out = append(out, k[:]...)
	}
	out = append(out, m.RecentBlockhash[:]...)
	out = appendCompactU16(out, len(m.Instructions))
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)
		out = appendCompactU16(out, len(ix.Accounts))
		out = append(out, ix.Accounts...)
		out = appendCompactU16(out, len(ix.Data))
		out = append(out, ix.Data...)
	}
	return out
}

// Signers returns the keys whose signatures the message requires, in
// signature order.
func (m Message) Signers() []address.PublicKey {
	n := int(m.Header.NumRequiredSignatures)
	if n > len(m.AccountKeys) {
		n = len(m.AccountKeys)
	}
	return m.AccountKeys[:n]
}

// IsWritable reports the writability of account i as encoded by the header.
func (m Message) IsWritable(i int) bool {
	nSigned := int(m.Header.NumRequiredSignatures)
	if i < nSigned {
		return i < nSigned-int(m.Header.NumReadonlySignedAccounts)
	}
	return i < len(m.AccountKeys)-int(m.Header.NumReadonlyUnsignedAccounts)
}

func decodeMessage(b []byte) (Message, int, error) {
	var m Message
	if len(b) < 3 {
		return Message{}, 0, fmt.Errorf("message: truncated header")
	}
	m.Header = MessageHeader{b[0], b[1], b[2]}
	off := 3

	nKeys, k, err := readCompactU16(b[off:])
	if err != nil {
		return Message{}, 0, fmt.Errorf("message keys: %w", err)
	}
	off += k
	if len(b[off:]) < nKeys*address.PublicKeyLength+HashLength {
		return Message{}, 0, fmt.Errorf("message: truncated keys")
	}
	for i := 0; i < nKeys; i++ {
		var pk address.PublicKey
		copy(pk[:], b[off:off+address.PublicKeyLength])
		m.AccountKeys = append(m.AccountKeys, pk)
		off += address.PublicKeyLength
	}
	copy(m.RecentBlockhash[:], b[off:off+HashLength])
	off += HashLength

	nIx, k, err := readCompactU16(b[off:])
	if err != nil {
		return Message{}, 0, fmt.Errorf("message instructions: %w", err)
	}
	off += k
	for i := 0; i < nIx; i++ {
		if off >= len(b) {
			return Message{}, 0, fmt.Errorf("instruction %d: truncated", i)
		}
		ci := CompiledInstruction{ProgramIDIndex: b[off]}
		off++

		nAcc, k, err := readCompactU16(b[off:])
		if err != nil {
			return Message{}, 0, fmt.Errorf("instruction %d accounts: %w", i, err)
		}
		off += k
		if len(b[off:]) < nAcc {
			return Message{}, 0, fmt.Errorf("instruction %d: truncated accounts", i)
		}
		ci.Accounts = append([]uint8{}, b[off:off+nAcc]...)
		off += nAcc

		nData, k, err := readCompactU16(b[off:])
		if err != nil {
			return Message{}, 0, fmt.Errorf("instruction %d data: %w", i, err)
		}
		off += k
		if len(b[off:]) < nData {
			return Message{}, 0, fmt.Errorf("instruction %d: truncated data", i)
		}
		ci.Data = append([]byte{}, b[off:off+nData]...)
		off += nData

		if int(ci.ProgramIDIndex) >= nKeys {
			return Message{}, 0, fmt.Errorf("instruction %d: program index out of range", i)
		}
		m.Instructions = append(m.Instructions, ci)
	}
	return m, off, nil
}
