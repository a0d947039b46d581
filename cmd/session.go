package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim/session"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in so simulations run under your identity",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openSessions()
		if err != nil {
			logrus.Fatalf("Failed to open session: %v", err)
		}
		if err := svc.Login(loginEmail); err != nil {
			logrus.Fatalf("Login failed: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", svc.Current().Identity.UserName)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored identity",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openSessions()
		if err != nil {
			logrus.Fatalf("Failed to open session: %v", err)
		}
		if err := svc.Logout(); err != nil {
			logrus.Fatalf("Logout failed: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := openSessions()
		if err != nil {
			logrus.Fatalf("Failed to open session: %v", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), describeSession(svc.Current()))
	},
}

// describeSession renders what the gate decides for s.
func describeSession(s *session.Session) string {
	if session.Evaluate(s) != session.Authorized {
		return session.SignInPrompt + "\n"
	}
	return fmt.Sprintf("%s <%s>\n", s.Identity.UserName, s.Identity.Email)
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address to sign in with")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
