package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ElysonGreber/JKPSol/app"
	"github.com/ElysonGreber/JKPSol/chain"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/history"
	"github.com/ElysonGreber/JKPSol/signer"
	"github.com/ElysonGreber/JKPSol/state"
	"github.com/ElysonGreber/JKPSol/submit"
)

func keygenCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the player keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := e.cfg.Keypair
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("keypair %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			kp, err := signer.GenerateKeypair()
			if err != nil {
				return err
			}
			if err := kp.Save(path); err != nil {
				return err
			}
			e.logger.Info("keypair written", "path", path)

			out := struct {
				PublicKey string `json:"publicKey"`
				Path      string `json:"path"`
			}{kp.PublicKey().String(), path}
			return e.print(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Public key:\t%s\n", out.PublicKey)
				fmt.Fprintf(w, "Saved to:\t%s\n", out.Path)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keypair")
	return cmd
}

func addressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Show the player key and the derived state account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				player, err := a.Signer.Connect(cmd.Context())
				if err != nil {
					return err
				}
				derived, err := a.Deriver.Derive(player)
				if err != nil {
					return err
				}
				out := struct {
					Player  string `json:"player"`
					Address string `json:"address"`
					Bump    uint8  `json:"bump"`
					Program string `json:"program"`
				}{player.String(), derived.Address.String(), derived.Bump, a.Deriver.ProgramID.String()}
				return e.print(cmd, out, func(w io.Writer) {
					fmt.Fprintf(w, "Player:\t%s\n", out.Player)
					fmt.Fprintf(w, "State account:\t%s\n", out.Address)
					fmt.Fprintf(w, "Bump:\t%d\n", out.Bump)
					fmt.Fprintf(w, "Program:\t%s\n", out.Program)
				})
			})
		},
	}
}

func stateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Fetch the player's score and round count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				v, err := a.Controller.Connect(cmd.Context())
				if err != nil {
					return err
				}
				out := struct {
					Player   string            `json:"player"`
					Address  string            `json:"address"`
					State    state.PlayerState `json:"state"`
					SyncedAt time.Time         `json:"syncedAt"`
				}{v.Player.String(), v.Address.String(), v.State, v.SyncedAt.UTC()}
				return e.print(cmd, out, func(w io.Writer) { writeState(w, v) })
			})
		},
	}
}

func historyCmd(e *env) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent rounds, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				if _, err := a.Controller.Connect(cmd.Context()); err != nil {
					return err
				}
				v := a.Controller.GotoPage(page)
				out := struct {
					Page    int             `json:"page"`
					Pages   int             `json:"pages"`
					HasPrev bool            `json:"hasPrev"`
					HasNext bool            `json:"hasNext"`
					Items   []history.Entry `json:"items"`
				}{v.Page, v.Pages, v.HasPrev, v.HasNext, v.Items}
				return e.print(cmd, out, func(w io.Writer) { writeHistory(w, v) })
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show, clamped to the available pages")
	return cmd
}

func statsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-move frequency and win rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				v, err := a.Controller.Connect(cmd.Context())
				if err != nil {
					return err
				}
				return e.print(cmd, v.Summary, func(w io.Writer) { writeSummary(w, v.Summary) })
			})
		},
	}
}

func playCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "play <rock|paper|scissors>",
		Short: "Submit a move and wait for the round result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			move, err := state.ParseMove(args[0])
			if err != nil {
				return err
			}
			cfg := e.cfg
			if yes {
				cfg.ConfirmSign = false
			}
			return e.runWith(cmd, cfg, func(a *app.App) error {
				if _, err := a.Controller.Connect(cmd.Context()); err != nil {
					return err
				}
				r, err := a.Controller.Play(cmd.Context(), move)
				if r == nil {
					return err
				}
				if perr := e.print(cmd, r, func(w io.Writer) { writeReceipt(w, r, cfg.Cluster) }); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "sign without the approval prompt")
	return cmd
}

func writeReceipt(w io.Writer, r *submit.Receipt, cluster string) {
	fmt.Fprintf(w, "Move:\t%s\n", r.Move)
	fmt.Fprintf(w, "Stage:\t%s\n", r.Stage())
	if !r.Signature.IsZero() {
		fmt.Fprintf(w, "Signature:\t%s\n", r.Signature)
	}
	if r.State != nil {
		fmt.Fprintf(w, "Score:\t%d\n", r.State.Score)
		if n := len(r.State.History); n > 0 {
			last := r.State.History[n-1]
			fmt.Fprintf(w, "Round:\t%s vs %s, %s\n", last.PlayerMove, last.ProgramMove, last.Result)
		}
	}
	if r.Detail != nil {
		fmt.Fprintf(w, "Slot:\t%d\n", r.Detail.Slot)
		fmt.Fprintf(w, "Fee:\t%s SOL\n", formatDec(r.Detail.FeeSOL()))
	}
	if !r.Signature.IsZero() {
		fmt.Fprintf(w, "Explorer:\t%s\n", explorerLink(r.Signature, cluster))
	}
}

func txCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <signature>",
		Short: "Show an executed transaction: slot, status, fee and logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := codec.SignatureFromBase58(args[0])
			if err != nil {
				return err
			}
			return e.run(cmd, func(a *app.App) error {
				d, err := a.Client.GetSubmissionDetail(cmd.Context(), sig)
				if err != nil {
					return err
				}
				out := struct {
					*chain.SubmissionDetail
					FeeSOL   string `json:"feeSol"`
					Explorer string `json:"explorer"`
				}{d, formatDec(d.FeeSOL()), explorerLink(sig, e.cfg.Cluster)}
				return e.print(cmd, out, func(w io.Writer) {
					status := "success"
					if !d.Succeeded() {
						status = "failed: " + d.Err
					}
					fmt.Fprintf(w, "Signature:\t%s\n", d.Signature)
					fmt.Fprintf(w, "Slot:\t%d\n", d.Slot)
					fmt.Fprintf(w, "Block time:\t%s\n", formatTime(d.BlockTime))
					fmt.Fprintf(w, "Status:\t%s\n", status)
					fmt.Fprintf(w, "Fee:\t%s SOL\n", out.FeeSOL)
					fmt.Fprintf(w, "Explorer:\t%s\n", out.Explorer)
					if len(d.Logs) > 0 {
						fmt.Fprintln(w, "Logs:")
						for _, l := range d.Logs {
							fmt.Fprintf(w, "  %s\n", l)
						}
					}
				})
			})
		},
	}
}

func leaderboardCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb"},
		Short:   "Player directory ranked by score",
	}

	var nickname string
	register := &cobra.Command{
		Use:   "register",
		Short: "Publish your current on-chain score under a nickname",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				if _, err := a.Controller.Connect(cmd.Context()); err != nil {
					return err
				}
				entries, err := a.Controller.Register(cmd.Context(), nickname)
				if err != nil {
					return err
				}
				return e.print(cmd, entries, func(w io.Writer) { writeRanking(w, entries) })
			})
		},
	}
	register.Flags().StringVarP(&nickname, "nickname", "n", "", "name shown on the leaderboard")
	_ = register.MarkFlagRequired("nickname")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app.App) error {
				entries, err := a.Controller.Ranking(cmd.Context())
				if err != nil {
					return err
				}
				return e.print(cmd, entries, func(w io.Writer) { writeRanking(w, entries) })
			})
		},
	}

	cmd.AddCommand(register, list)
	return cmd
}
