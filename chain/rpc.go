package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	rpctypes "github.com/cometbft/cometbft/rpc/jsonrpc/types"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/metrics"
)

const (
	DefaultConfirmTimeout = 90 * time.Second
	DefaultPollInterval   = time.Second

	maxResponseBytes = 4 << 20
)

// RPCClient talks to a Solana-compatible JSON-RPC 2.0 endpoint. Finality is
// awaited over the pubsub websocket when one is configured, otherwise by
// polling signature statuses.
type RPCClient struct {
	endpoint       string
	wsURL          string
	httpClient     *http.Client
	dialer         *websocket.Dialer
	commitment     Commitment
	pollInterval   time.Duration
	confirmTimeout time.Duration
	logger         log.Logger
	metrics        *metrics.Metrics

	nextID atomic.Int64
}

var _ Client = (*RPCClient)(nil)

type Option func(*RPCClient)

func WithHTTPClient(h *http.Client) Option { return func(c *RPCClient) { c.httpClient = h } }

// WithWebsocketURL enables signatureSubscribe. An empty url disables it.
func WithWebsocketURL(u string) Option { return func(c *RPCClient) { c.wsURL = u } }

func WithPollInterval(d time.Duration) Option { return func(c *RPCClient) { c.pollInterval = d } }

func WithConfirmTimeout(d time.Duration) Option { return func(c *RPCClient) { c.confirmTimeout = d } }

// WithCommitment sets the level used for reads and preflight.
func WithCommitment(cm Commitment) Option { return func(c *RPCClient) { c.commitment = cm } }

func WithLogger(l log.Logger) Option { return func(c *RPCClient) { c.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *RPCClient) { c.metrics = m } }

func NewRPCClient(endpoint string, opts ...Option) *RPCClient {
	c := &RPCClient{
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		dialer:         websocket.DefaultDialer,
		commitment:     CommitmentConfirmed,
		pollInterval:   DefaultPollInterval,
		confirmTimeout: DefaultConfirmTimeout,
		logger:         log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.confirmTimeout <= 0 {
		c.confirmTimeout = DefaultConfirmTimeout
	}
	c.logger = c.logger.With("module", "chain")
	return c
}

func (c *RPCClient) Endpoint() string { return c.endpoint }

// buildParams renders values as a JSON array, appending each in order.
func buildParams(values ...any) (json.RawMessage, error) {
	p := []byte("[]")
	for _, v := range values {
		var err error
		p, err = sjson.SetBytes(p, "-1", v)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
	}
	return p, nil
}

func (c *RPCClient) request(method string, values ...any) ([]byte, error) {
	p, err := buildParams(values...)
	if err != nil {
		return nil, err
	}
	req := rpctypes.NewRPCRequest(rpctypes.JSONRPCIntID(c.nextID.Add(1)), method, p)
	return json.Marshal(req)
}

// call performs one JSON-RPC round trip and returns the "result" member.
func (c *RPCClient) call(ctx context.Context, method string, values ...any) (res gjson.Result, err error) {
	defer func() { c.metrics.ObserveRPC(method, err) }()

	body, err := c.request(method, values...)
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, ErrRPC.Wrapf("%s: %v", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, ErrRPC.Wrapf("%s: read body: %v", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, ErrRPC.Wrapf("%s: http %d: %s", method, resp.StatusCode, truncate(raw, 200))
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, ErrRPC.Wrapf("%s: invalid json response", method)
	}
	doc := gjson.ParseBytes(raw)
	if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, ErrRPC.Wrapf("%s: %s (code %d)", method, e.Get("message").String(), e.Get("code").Int())
	}
	return doc.Get("result"), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func (c *RPCClient) GetAccountBytes(ctx context.Context, addr address.PublicKey) ([]byte, error) {
	res, err := c.call(ctx, "getAccountInfo", addr.String(), map[string]any{
		"encoding":   "base64",
		"commitment": c.commitment,
	})
	if err != nil {
		return nil, err
	}
	value := res.Get("value")
	if !value.Exists() || value.Type == gjson.Null {
		return nil, ErrAccountNotFound.Wrap(addr.String())
	}
	data := value.Get("data.0").String()
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrRPC.Wrapf("getAccountInfo: decode data: %v", err)
	}
	return b, nil
}

func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (codec.Hash, error) {
	res, err := c.call(ctx, "getLatestBlockhash", map[string]any{"commitment": c.commitment})
	if err != nil {
		return codec.Hash{}, err
	}
	h, err := codec.HashFromBase58(res.Get("value.blockhash").String())
	if err != nil {
		return codec.Hash{}, ErrRPC.Wrapf("getLatestBlockhash: %v", err)
	}
	return h, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, raw []byte) (codec.Signature, error) {
	res, err := c.call(ctx, "sendTransaction", base64.StdEncoding.EncodeToString(raw), map[string]any{
		"encoding":            "base64",
		"preflightCommitment": c.commitment,
	})
	if err != nil {
		return codec.Signature{}, err
	}
	sig, err := codec.SignatureFromBase58(res.String())
	if err != nil {
		return codec.Signature{}, ErrRPC.Wrapf("sendTransaction: %v", err)
	}
	c.logger.Debug("transaction sent", "signature", sig.String())
	return sig, nil
}

// signatureStatus is one entry of getSignatureStatuses.
type signatureStatus struct {
	found      bool
	commitment Commitment
	err        string
}

func (c *RPCClient) getSignatureStatus(ctx context.Context, sig codec.Signature) (signatureStatus, error) {
	res, err := c.call(ctx, "getSignatureStatuses", []string{sig.String()}, map[string]any{
		"searchTransactionHistory": true,
	})
	if err != nil {
		return signatureStatus{}, err
	}
	v := res.Get("value.0")
	if !v.Exists() || v.Type == gjson.Null {
		return signatureStatus{}, nil
	}
	st := signatureStatus{found: true, commitment: Commitment(v.Get("confirmationStatus").String())}
	if st.commitment.rank() == 0 {
		// Nodes that omit confirmationStatus report null confirmations once
		// rooted.
		if v.Get("confirmations").Type == gjson.Null {
			st.commitment = CommitmentFinalized
		} else {
			st.commitment = CommitmentProcessed
		}
	}
	if e := v.Get("err"); e.Exists() && e.Type != gjson.Null {
		st.err = e.Raw
	}
	return st, nil
}

// checkStatus reports whether sig is already final at want.
func (c *RPCClient) checkStatus(ctx context.Context, sig codec.Signature, want Commitment) (bool, error) {
	st, err := c.getSignatureStatus(ctx, sig)
	if err != nil {
		return false, err
	}
	if st.err != "" {
		return false, ErrTransactionFailed.Wrapf("%s: %s", sig, st.err)
	}
	return st.found && st.commitment.Satisfies(want), nil
}

// AwaitFinality waits for sig to reach commitment, bounded by the configured
// confirm timeout.
func (c *RPCClient) AwaitFinality(ctx context.Context, sig codec.Signature, commitment Commitment) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	err := errSubscribeUnavailable
	if c.wsURL != "" {
		err = c.awaitSubscription(waitCtx, sig, commitment)
		if errors.Is(err, errSubscribeUnavailable) {
			c.logger.Debug("websocket unavailable, polling", "signature", sig.String(), "err", err)
		}
	}
	if errors.Is(err, errSubscribeUnavailable) {
		err = c.pollFinality(waitCtx, sig, commitment)
	}

	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return ErrConfirmTimeout.Wrapf("%s after %s", sig, c.confirmTimeout)
	}
	return err
}

func (c *RPCClient) pollFinality(ctx context.Context, sig codec.Signature, want Commitment) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		done, err := c.checkStatus(ctx, sig, want)
		switch {
		case errors.Is(err, ErrTransactionFailed):
			return err
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("status poll failed", "signature", sig.String(), "err", err)
		case done:
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *RPCClient) GetSubmissionDetail(ctx context.Context, sig codec.Signature) (*SubmissionDetail, error) {
	res, err := c.call(ctx, "getTransaction", sig.String(), map[string]any{
		"encoding":                       "json",
		"commitment":                     CommitmentConfirmed,
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return nil, err
	}
	if !res.Exists() || res.Type == gjson.Null {
		return nil, ErrTransactionNotFound.Wrap(sig.String())
	}

	d := &SubmissionDetail{
		Signature: sig,
		Slot:      res.Get("slot").Uint(),
		Fee:       res.Get("meta.fee").Uint(),
		Logs:      []string{},
	}
	if bt := res.Get("blockTime"); bt.Type == gjson.Number {
		d.BlockTime = time.Unix(bt.Int(), 0).UTC()
	}
	res.Get("meta.logMessages").ForEach(func(_, line gjson.Result) bool {
		d.Logs = append(d.Logs, line.String())
		return true
	})
	if e := res.Get("meta.err"); e.Exists() && e.Type != gjson.Null {
		d.Err = e.Raw
	}
	return d, nil
}
