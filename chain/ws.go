package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	rpctypes "github.com/cometbft/cometbft/rpc/jsonrpc/types"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/ElysonGreber/JKPSol/codec"
)

var errSubscribeUnavailable = errors.New("signature subscription unavailable")

// WebsocketURL derives the pubsub endpoint from an RPC endpoint: http maps to
// ws, https to wss, and an explicit port is incremented by one.
func WebsocketURL(rpc string) (string, error) {
	u, err := url.Parse(rpc)
	if err != nil {
		return "", fmt.Errorf("parse rpc url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported rpc scheme %q", u.Scheme)
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("parse rpc port: %w", err)
		}
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(n+1))
	}
	return u.String(), nil
}

// awaitSubscription waits for a signatureNotification. Any failure to
// establish the subscription is reported as errSubscribeUnavailable so the
// caller can fall back to polling.
func (c *RPCClient) awaitSubscription(ctx context.Context, sig codec.Signature, want Commitment) error {
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", errSubscribeUnavailable, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	p, err := buildParams(sig.String(), map[string]any{"commitment": want})
	if err != nil {
		return err
	}
	id := c.nextID.Add(1)
	req := rpctypes.NewRPCRequest(rpctypes.JSONRPCIntID(id), "signatureSubscribe", p)
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode subscribe: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return fmt.Errorf("%w: write: %v", errSubscribeUnavailable, err)
	}

	var subID int64 = -1
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: read: %v", errSubscribeUnavailable, err)
		}
		doc := gjson.ParseBytes(msg)

		if subID < 0 {
			if doc.Get("id").Int() != id {
				continue
			}
			if e := doc.Get("error"); e.Exists() && e.Type != gjson.Null {
				return fmt.Errorf("%w: %s", errSubscribeUnavailable, e.Get("message").String())
			}
			subID = doc.Get("result").Int()
			c.logger.Debug("subscribed", "signature", sig.String(), "subscription", subID)

			// The transaction may have landed before the subscription.
			done, err := c.checkStatus(ctx, sig, want)
			if err != nil && errors.Is(err, ErrTransactionFailed) {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		if doc.Get("method").String() != "signatureNotification" ||
			doc.Get("params.subscription").Int() != subID {
			continue
		}
		value := doc.Get("params.result.value")
		if value.Type == gjson.String {
			// receivedSignature notice, not a finality event.
			continue
		}
		if e := value.Get("err"); e.Exists() && e.Type != gjson.Null {
			return ErrTransactionFailed.Wrapf("%s: %s", sig, e.Raw)
		}
		return nil
	}
}
