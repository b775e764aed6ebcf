package codec

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElysonGreber/JKPSol/address"
)

func mustKey(t *testing.T) (address.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pk, err := address.FromBytes(pub)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	return pk, priv
}

func testBlockhash() Hash {
	var h Hash
	for i := range h {
		h[i] = byte(i + 1)
	}
	return h
}

func TestCompactU16(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}
	for _, tc := range cases {
		got := appendCompactU16(nil, tc.n)
		require.Equal(t, tc.want, got, "n=%d", tc.n)

		back, k, err := readCompactU16(got)
		require.NoError(t, err)
		require.Equal(t, tc.n, back)
		require.Equal(t, len(got), k)
	}

	_, _, err := readCompactU16([]byte{0x80})
	require.Error(t, err)
}

func TestCompileMessage_MoveInstructionLayout(t *testing.T) {
	player, _ := mustKey(t)
	program := address.MustFromBase58("BEGGHHUjM1u3okqQreDkqM11y7hhk1amfBrWDQTN4XhJ")
	pda, _ := mustKey(t)

	ix := Instruction{
		ProgramID: program,
		Accounts: []AccountMeta{
			{PublicKey: player, IsSigner: true, IsWritable: true},
			{PublicKey: pda, IsWritable: true},
			{PublicKey: address.SystemProgramID},
			{PublicKey: address.SysvarRentID},
			{PublicKey: address.SysvarClockID},
		},
		Data: []byte{2},
	}
	msg, err := CompileMessage(player, testBlockhash(), ix)
	require.NoError(t, err)

	require.Equal(t, MessageHeader{1, 0, 4}, msg.Header)
	require.Equal(t, []address.PublicKey{
		player, pda, address.SystemProgramID, address.SysvarRentID, address.SysvarClockID, program,
	}, msg.AccountKeys)
	require.Len(t, msg.Instructions, 1)
	require.Equal(t, uint8(5), msg.Instructions[0].ProgramIDIndex)
	require.Equal(t, []uint8{0, 1, 2, 3, 4}, msg.Instructions[0].Accounts)
	require.Equal(t, []byte{2}, msg.Instructions[0].Data)

	require.True(t, msg.IsWritable(0))
	require.True(t, msg.IsWritable(1))
	require.False(t, msg.IsWritable(2))
	require.False(t, msg.IsWritable(5))
	require.Equal(t, []address.PublicKey{player}, msg.Signers())
}

func TestCompileMessage_MergesFlags(t *testing.T) {
	payer, _ := mustKey(t)
	other, _ := mustKey(t)
	program, _ := mustKey(t)

	ixs := []Instruction{
		{ProgramID: program, Accounts: []AccountMeta{{PublicKey: other}}},
		{ProgramID: program, Accounts: []AccountMeta{{PublicKey: other, IsSigner: true}}},
	}
	msg, err := CompileMessage(payer, testBlockhash(), ixs...)
	require.NoError(t, err)
	require.Equal(t, []address.PublicKey{payer, other, program}, msg.AccountKeys)
	require.Equal(t, MessageHeader{2, 1, 1}, msg.Header)
}

func TestCompileMessage_Rejects(t *testing.T) {
	payer, _ := mustKey(t)
	_, err := CompileMessage(address.PublicKey{}, testBlockhash(), Instruction{})
	require.Error(t, err)
	_, err = CompileMessage(payer, Hash{}, Instruction{})
	require.Error(t, err)
	_, err = CompileMessage(payer, testBlockhash())
	require.Error(t, err)
}

func TestTransaction_SignMarshalDecode(t *testing.T) {
	payer, priv := mustKey(t)
	program, _ := mustKey(t)

	tx, err := NewTransaction(payer, testBlockhash(), Instruction{
		ProgramID: program,
		Accounts:  []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true}},
		Data:      []byte{1},
	})
	require.NoError(t, err)

	_, err = tx.Marshal()
	require.Error(t, err, "unsigned tx must not serialize")

	sig := ed25519.Sign(priv, tx.MessageBytes())
	require.NoError(t, tx.AddSignature(payer, sig))
	require.NoError(t, tx.VerifySignatures())
	id := tx.ID()
	require.Equal(t, sig, id[:])

	raw, err := tx.Marshal()
	require.NoError(t, err)

	back, err := DecodeTransaction(raw)
	require.NoError(t, err)
	require.Equal(t, tx.Signatures, back.Signatures)
	require.Equal(t, tx.MessageBytes(), back.MessageBytes())
	require.NoError(t, back.VerifySignatures())

	// Tamper with the payload.
	back.Message.Instructions[0].Data[0] = 2
	require.Error(t, back.VerifySignatures())

	_, err = DecodeTransaction(raw[:len(raw)-1])
	require.Error(t, err)
	_, err = DecodeTransaction(append(raw, 0))
	require.Error(t, err)
}

func TestTransaction_AddSignatureRejectsStranger(t *testing.T) {
	payer, _ := mustKey(t)
	stranger, priv := mustKey(t)
	program, _ := mustKey(t)

	tx, err := NewTransaction(payer, testBlockhash(), Instruction{ProgramID: program})
	require.NoError(t, err)
	require.Error(t, tx.AddSignature(stranger, ed25519.Sign(priv, tx.MessageBytes())))
	require.Error(t, tx.AddSignature(payer, []byte{1, 2, 3}))
}

func TestSignature_Base58(t *testing.T) {
	_, priv := mustKey(t)
	s, err := SignatureFromBytes(ed25519.Sign(priv, []byte("x")))
	require.NoError(t, err)

	back, err := SignatureFromBase58(s.String())
	require.NoError(t, err)
	require.Equal(t, s, back)

	h := testBlockhash()
	hb, err := HashFromBase58(h.String())
	require.NoError(t, err)
	require.Equal(t, h, hb)
}
