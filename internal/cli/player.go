package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/minibeans/internal/controller"
	"github.com/mcoot/minibeans/internal/storage"
)

// channelReward is the advertised channel subscription reward. The server
// decides what is actually credited.
const channelReward = 50

// load runs the startup sequence. Any failure has already been notified.
func load(cmd *cobra.Command) (controller.ViewState, error) {
	if err := app.Controller.Load(cmd.Context()); err != nil {
		return controller.ViewState{}, reported(err)
	}
	return app.Controller.State(), nil
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your balance and the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := load(cmd)
			if err != nil {
				return err
			}
			out.Print(profileView{Player: st.Player, Leaderboard: st.Leaderboard, self: st.PlayerID})
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := load(cmd)
			if err != nil {
				return err
			}
			out.Print(leaderboardView{Entries: st.Leaderboard, self: st.PlayerID})
			return nil
		},
	}
}

func newWithdrawCmd() *cobra.Command {
	var amount, account string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Send beans to your game account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := load(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			if err := ctrl.SetTab(cmd.Context(), controller.TabWithdraw); err != nil {
				return err
			}
			ctrl.SetWithdrawAmount(amount)
			ctrl.SetAccountID(account)
			if err := ctrl.Withdraw(cmd.Context()); err != nil {
				return reported(err)
			}
			out.Print(ctrl.State().Player)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Number of beans to withdraw")
	cmd.Flags().StringVar(&account, "account", "", "Game account id to receive the beans")

	return cmd
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Send a question to the admins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := load(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			if err := ctrl.SetTab(cmd.Context(), controller.TabHelp); err != nil {
				return err
			}
			ctrl.SetQuestion(strings.Join(args, " "))
			return reported(ctrl.SendQuestion(cmd.Context()))
		},
	}
}

func newEarnCmd() *cobra.Command {
	var join bool

	cmd := &cobra.Command{
		Use:   "earn",
		Short: "Show ways to earn beans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := load(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			if err := ctrl.SetTab(cmd.Context(), controller.TabEarn); err != nil {
				return err
			}
			if join {
				if err := ctrl.JoinChannel(cmd.Context()); err != nil {
					return reported(err)
				}
			}
			st := ctrl.State()
			out.Print(earnView{ChannelJoined: st.ChannelJoined(), ChannelReward: channelReward})
			return nil
		},
	}

	cmd.Flags().BoolVar(&join, "join", false, "Claim the channel subscription reward")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the local player id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.Identity.Resolve(cmd.Context())
			_, err := app.Store.Load(cmd.Context(), storage.KeyAdminToken)
			out.Print(identityView{
				PlayerID:         id,
				Profile:          cfg.Profile,
				AdminTokenStored: err == nil,
			})
			return nil
		},
	}
}
