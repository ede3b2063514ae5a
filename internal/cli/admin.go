package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/minibeans/internal/controller"
)

var errNotAdmin = errors.New("not signed in as admin, run 'beans admin login' first")

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands",
	}

	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminLogoutCmd())
	cmd.AddCommand(newAdminListCmd("withdrawals", "List withdrawal requests", controller.AdminViewWithdrawals))
	cmd.AddCommand(newAdminListCmd("messages", "List support messages", controller.AdminViewMessages))
	cmd.AddCommand(newAdminListCmd("players", "List all players", controller.AdminViewPlayers))
	cmd.AddCommand(newAdminBalanceCmd())

	return cmd
}

func newAdminLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BEANS_ADMIN_PASSWORD")
			}
			if _, err := load(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			ctrl.OpenLogin()
			ctrl.SetAdminPassword(password)
			return reported(ctrl.AdminLogin(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Admin password (env: BEANS_ADMIN_PASSWORD)")

	return cmd
}

func newAdminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logout is local, so it must work while the ledger is unreachable
			return app.Controller.AdminLogout(cmd.Context())
		},
	}
}

// loadAdmin runs the startup sequence and requires an admin session
func loadAdmin(cmd *cobra.Command) error {
	st, err := load(cmd)
	if err != nil {
		return err
	}
	if !st.IsAdmin {
		return errNotAdmin
	}
	return nil
}

func newAdminListCmd(use, short string, view controller.AdminView) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadAdmin(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			if err := ctrl.SetAdminView(cmd.Context(), view); err != nil {
				return reported(err)
			}

			st := ctrl.State()
			if !st.IsAdmin {
				return errNotAdmin
			}
			switch view {
			case controller.AdminViewMessages:
				out.Print(st.Messages)
			case controller.AdminViewPlayers:
				out.Print(st.AllPlayers)
			default:
				out.Print(st.Withdrawals)
			}
			return nil
		},
	}
}

func newAdminBalanceCmd() *cobra.Command {
	var player, amount string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Credit (+N) or debit (-N) a player's beans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadAdmin(cmd); err != nil {
				return err
			}
			ctrl := app.Controller
			ctrl.SetBalanceTarget(player)
			ctrl.SetBalanceAmount(amount)
			return reported(ctrl.AdminUpdateBalance(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Target player id")
	cmd.Flags().StringVar(&amount, "amount", "", "Signed amount, e.g. +100 or -50")

	return cmd
}
