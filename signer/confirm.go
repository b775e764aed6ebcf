package signer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/codec"
)

// Confirming asks for an interactive yes before delegating to Inner, the way
// a browser wallet pops up an approval dialog.
type Confirming struct {
	Inner Signer
	In    io.Reader
	Out   io.Writer

	// Describe renders the approval prompt. Optional.
	Describe func(tx *codec.Transaction) string

	mu     sync.Mutex
	reader *bufio.Reader
}

var _ Signer = (*Confirming)(nil)

func (c *Confirming) Connect(ctx context.Context) (address.PublicKey, error) {
	return c.Inner.Connect(ctx)
}

func (c *Confirming) SignTransaction(ctx context.Context, tx *codec.Transaction) (*codec.Transaction, error) {
	signers := tx.Signers()
	if len(signers) == 0 {
		return nil, ErrNotSigner.Wrap("transaction has no required signers")
	}
	desc := fmt.Sprintf("transaction with %d instruction(s), fee payer %s",
		len(tx.Message.Instructions), signers[0])
	if c.Describe != nil {
		desc = c.Describe(tx)
	}

	// One reader for the lifetime of c: input buffered past the first line
	// belongs to the next prompt.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	if _, err := fmt.Fprintf(c.Out, "%s\nApprove? [y/N]: ", desc); err != nil {
		return nil, err
	}

	line, err := c.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read approval: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
	default:
		return nil, ErrRejected.Wrap("declined by user")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Inner.SignTransaction(ctx, tx)
}
