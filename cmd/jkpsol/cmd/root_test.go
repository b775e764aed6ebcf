package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"cosmossdk.io/depinject"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/ElysonGreber/JKPSol/address"
	"github.com/ElysonGreber/JKPSol/app"
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/signer"
	"github.com/ElysonGreber/JKPSol/submit"
	fakes "github.com/ElysonGreber/JKPSol/testutil"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, modules []depinject.Config, stdin string, args ...string) result {
	t.Helper()
	root := newRootCmd(modules...)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// fakeModules wires the real controller and directory on an in-memory ledger
// and wallet.
func fakeModules(ch *fakes.Chain, s *fakes.Signer) []depinject.Config {
	return []depinject.Config{
		depinject.Supply(ch, s),
		depinject.Provide(app.ProvideDeriver, app.ProvideDirectory, app.ProvideController),
	}
}

func newFakes(t *testing.T) (*fakes.Chain, *fakes.Signer) {
	ch := fakes.NewChain()
	ch.Program = fakes.RockProgram
	return ch, fakes.NewSigner(t)
}

func TestKeygen(t *testing.T) {
	home := t.TempDir()

	res := execute(t, nil, "", "keygen", "--home", home, "-o", "json")
	require.NoError(t, res.err)
	var out struct {
		PublicKey string `json:"publicKey"`
		Path      string `json:"path"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Equal(t, filepath.Join(home, "id.json"), out.Path)

	kp, err := signer.LoadKeypair(out.Path)
	require.NoError(t, err)
	require.Equal(t, out.PublicKey, kp.PublicKey().String())

	res = execute(t, nil, "", "keygen", "--home", home)
	require.ErrorContains(t, res.err, "already exists")

	res = execute(t, nil, "", "keygen", "--home", home, "--force", "-o", "json")
	require.NoError(t, res.err)
	kp2, err := signer.LoadKeypair(out.Path)
	require.NoError(t, err)
	require.NotEqual(t, kp.PublicKey(), kp2.PublicKey())
}

func TestAddressUsesDefaultWiring(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, nil, "", "keygen", "--home", home).err)
	kp, err := signer.LoadKeypair(filepath.Join(home, "id.json"))
	require.NoError(t, err)

	res := execute(t, nil, "", "address", "--home", home, "--directory-backend", "memdb", "-o", "json")
	require.NoError(t, res.err, res.stderr)

	var out struct {
		Player  string `json:"player"`
		Address string `json:"address"`
		Bump    uint8  `json:"bump"`
		Program string `json:"program"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))

	want, err := address.NewDeriver(address.MustFromBase58(params.DefaultProgramID)).Derive(kp.PublicKey())
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey().String(), out.Player)
	require.Equal(t, want.Address.String(), out.Address)
	require.Equal(t, want.Bump, out.Bump)
	require.Equal(t, params.DefaultProgramID, out.Program)
}

func TestDefaultWiringReachesLedger(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, nil, "", "keygen", "--home", home).err)

	// Every command that wires the app must get past depinject; the ledger
	// at the unreachable endpoint is what fails.
	for _, args := range [][]string{
		{"state"},
		{"history"},
		{"stats"},
		{"leaderboard", "list"},
	} {
		args = append(args, "--home", home, "--directory-backend", "memdb", "--rpc-url", "http://127.0.0.1:1")
		res := execute(t, nil, "", args...)
		if res.err != nil {
			require.NotContains(t, res.err.Error(), "wire app", args[0])
		}
	}
}

func TestMissingKeypair(t *testing.T) {
	res := execute(t, nil, "", "state", "--home", t.TempDir(), "--directory-backend", "memdb")
	require.Error(t, res.err)
}

func TestInvalidOutputFormat(t *testing.T) {
	res := execute(t, nil, "", "keygen", "--home", t.TempDir(), "-o", "yaml")
	require.ErrorContains(t, res.err, "--output")
}

func TestPlayThenHistoryAndStats(t *testing.T) {
	ch, s := newFakes(t)
	modules := fakeModules(ch, s)
	home := t.TempDir()

	res := execute(t, modules, "", "play", "paper", "--yes", "--home", home, "--directory-backend", "memdb", "-o", "json")
	require.NoError(t, res.err, res.stderr)

	var receipt struct {
		Move      string   `json:"move"`
		Stages    []string `json:"stages"`
		Signature string   `json:"signature"`
		State     struct {
			Score uint64 `json:"score"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &receipt))
	require.Equal(t, "Paper", receipt.Move)
	require.Equal(t, []string{"built", "signed", "submitted", "confirmed"}, receipt.Stages)
	require.Equal(t, uint64(1), receipt.State.Score)
	require.Equal(t, ch.Sent[0].ID().String(), receipt.Signature)

	res = execute(t, modules, "", "history", "--home", home, "--directory-backend", "memdb", "-o", "json")
	require.NoError(t, res.err)
	var page struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
		Items []struct {
			Round       int    `json:"round"`
			PlayerMove  string `json:"playerMove"`
			ProgramMove string `json:"programMove"`
			Result      string `json:"result"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &page))
	require.Equal(t, 1, page.Page)
	require.Equal(t, 1, page.Pages)
	require.Len(t, page.Items, 1)
	require.Equal(t, 1, page.Items[0].Round)
	require.Equal(t, "Paper", page.Items[0].PlayerMove)
	require.Equal(t, "Rock", page.Items[0].ProgramMove)
	require.Equal(t, "Won", page.Items[0].Result)

	res = execute(t, modules, "", "stats", "--home", home, "--directory-backend", "memdb")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Paper")
	require.Contains(t, res.stdout, "100%")
}

func TestPlayTextShowsProgressAndExplorerLink(t *testing.T) {
	ch, s := newFakes(t)
	res := execute(t, fakeModules(ch, s), "", "play", "rock", "--yes", "--home", t.TempDir(), "--directory-backend", "memdb")
	require.NoError(t, res.err, res.stderr)

	sig := ch.Sent[0].ID().String()
	require.Contains(t, res.stderr, "built")
	require.Contains(t, res.stderr, "confirmed "+sig)
	require.Contains(t, res.stdout, "Rock vs Rock, Draw")
	require.Contains(t, res.stdout, params.ExplorerURL+sig+"?cluster=devnet")
}

func TestPlayInvalidMoveSendsNothing(t *testing.T) {
	ch, s := newFakes(t)
	res := execute(t, fakeModules(ch, s), "", "play", "lizard", "--home", t.TempDir(), "--directory-backend", "memdb")
	require.ErrorContains(t, res.err, "unknown move")
	require.Zero(t, ch.CallCount("SendTransaction"))
}

func TestPlayApprovalPrompt(t *testing.T) {
	kp, err := signer.GenerateKeypair()
	require.NoError(t, err)

	modules := func(ch *fakes.Chain) []depinject.Config {
		return []depinject.Config{
			depinject.Supply(ch, app.KeyFile{Keypair: kp}),
			depinject.Provide(app.ProvideDeriver, app.ProvideSigner, app.ProvideDirectory, app.ProvideController),
		}
	}

	t.Run("declined", func(t *testing.T) {
		ch, _ := newFakes(t)
		res := execute(t, modules(ch), "n\n", "play", "paper", "--home", t.TempDir(), "--directory-backend", "memdb", "-o", "json")
		require.ErrorIs(t, res.err, submit.ErrSignRejected)
		require.Contains(t, res.stderr, "Approve? [y/N]")
		require.Contains(t, res.stderr, "Sign move Paper")
		require.Zero(t, ch.CallCount("SendTransaction"))

		var receipt struct {
			Stages []string `json:"stages"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &receipt))
		require.Equal(t, []string{"built"}, receipt.Stages)
	})

	t.Run("approved", func(t *testing.T) {
		ch, _ := newFakes(t)
		res := execute(t, modules(ch), "y\n", "play", "paper", "--home", t.TempDir(), "--directory-backend", "memdb")
		require.NoError(t, res.err, res.stderr)
		require.Equal(t, 1, ch.CallCount("SendTransaction"))
		require.Contains(t, res.stdout, "confirmed")
	})
}

func TestLeaderboardRegisterAndList(t *testing.T) {
	ch, s := newFakes(t)
	modules := fakeModules(ch, s)
	home := t.TempDir()

	res := execute(t, modules, "", "play", "paper", "--yes", "--home", home)
	require.NoError(t, res.err, res.stderr)

	res = execute(t, modules, "", "leaderboard", "register", "--nickname", "  alice ", "--home", home, "-o", "json")
	require.NoError(t, res.err, res.stderr)

	type entry struct {
		Identity string `json:"identity"`
		Nickname string `json:"nickname"`
		Score    uint64 `json:"score"`
	}
	var entries []entry
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	require.Equal(t, []entry{{Identity: s.PublicKey().String(), Nickname: "alice", Score: 1}}, entries)

	// goleveldb keeps the directory across invocations.
	res = execute(t, modules, "", "lb", "list", "--home", home)
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "alice")
	require.Contains(t, res.stdout, s.PublicKey().String())

	res = execute(t, modules, "", "leaderboard", "register", "--nickname", " ", "--home", home)
	require.Error(t, res.err)
}

func TestTxDetail(t *testing.T) {
	ch, s := newFakes(t)
	var sig codec.Signature
	for i := range sig {
		sig[i] = byte(i + 1)
	}

	res := execute(t, fakeModules(ch, s), "", "tx", sig.String(), "--home", t.TempDir(), "--directory-backend", "memdb")
	require.NoError(t, res.err, res.stderr)
	require.Contains(t, res.stdout, "0.000005 SOL")
	require.Contains(t, res.stdout, "success")
	require.Contains(t, res.stdout, "Program log: move accepted")
	require.Contains(t, res.stdout, params.ExplorerURL+sig.String()+"?cluster=devnet")

	res = execute(t, fakeModules(ch, s), "", "tx", "not-a-signature", "--home", t.TempDir(), "--directory-backend", "memdb")
	require.Error(t, res.err)
}

func TestFormatDec(t *testing.T) {
	require.Equal(t, "0.000005", formatDec(sdkmath.LegacyNewDecWithPrec(5, 6)))
	require.Equal(t, "2", formatDec(sdkmath.LegacyNewDec(2)))
	require.Equal(t, "0", formatDec(sdkmath.LegacyZeroDec()))
}
