package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"clubhub/internal/auth"
	"clubhub/internal/backend"
	"clubhub/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	regEmail     string
	regFirstName string
	regLastName  string
	regUserType  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and open your dashboard",
	Long: `Signs in with email and password. The password is prompted for unless given
with --password or CLUBHUB_PASSWORD. The session is kept in the configured store
until you log out or it can no longer be refreshed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := prompt(loginEmail, "Email", false)
		if err != nil {
			return err
		}
		password, err := prompt(firstNonEmpty(loginPassword, os.Getenv("CLUBHUB_PASSWORD")), "Password", true)
		if err != nil {
			return err
		}

		view, err := cli.auth.Login(cmd.Context(), email, password)
		if errors.Is(err, session.ErrInvalidCredentials) {
			pterm.Error.Println("Login failed. Check your email and password.")
			return err
		}
		if err != nil {
			return err
		}

		id, _ := cli.auth.State().Current()
		pterm.Success.Printfln("Signed in as %s (%s)", id.DisplayName(), id.Role)
		ev := cli.nav.Navigate(string(view))
		return render(cmd.Context(), ev.View)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cli.auth.State().Current(); !ok {
			pterm.Info.Println("Already logged out.")
			return nil
		}
		cli.auth.Logout(cmd.Context())
		pterm.Success.Println("Logged out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DefaultSection.Println("Session")

		rows := pterm.TableData{
			{"Profile", cli.cfg.Profile},
			{"Store", cli.cfg.Store},
			{"API", cli.cfg.APIURL},
		}
		id, ok := cli.auth.State().Current()
		if !ok {
			rows = append(rows, []string{"Signed in", "no"})
			return pterm.DefaultTable.WithData(rows).Render()
		}

		rows = append(rows,
			[]string{"Signed in", "yes"},
			[]string{"User", fmt.Sprintf("%s <%s>", id.DisplayName(), id.Email)},
			[]string{"User ID", id.ID},
			[]string{"Role", id.Role.String()},
		)
		if token, ok := cli.auth.AccessToken(cmd.Context()); ok {
			if claims, err := auth.Decode(token); err == nil && claims.ExpiresAt != nil {
				exp := claims.ExpiresAt.Time
				note := "valid"
				if time.Now().After(exp) {
					note = "expired, refreshed on next request"
				}
				rows = append(rows, []string{"Access token", fmt.Sprintf("%s (%s)", exp.Local().Format(time.RFC1123), note)})
			}
		}
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  `Creates a Club-Hub account. Registering does not sign you in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := prompt(regEmail, "Email", false)
		if err != nil {
			return err
		}
		first, err := prompt(regFirstName, "First name", false)
		if err != nil {
			return err
		}
		last, err := prompt(regLastName, "Last name", false)
		if err != nil {
			return err
		}
		password, err := prompt(os.Getenv("CLUBHUB_PASSWORD"), "Password", true)
		if err != nil {
			return err
		}
		confirm, err := prompt(os.Getenv("CLUBHUB_PASSWORD"), "Confirm password", true)
		if err != nil {
			return err
		}

		u, err := cli.creds.Register(cmd.Context(), backend.Registration{
			Email:     email,
			Password:  password,
			Password2: confirm,
			FirstName: first,
			LastName:  last,
			UserType:  strings.ToUpper(regUserType),
		})
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Account created for %s (%s). Run `clubhub login` to sign in.", u.Email, u.UserType)
		return nil
	},
}

// prompt returns value when set, otherwise asks for it interactively.
func prompt(value, label string, secret bool) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	input := pterm.DefaultInteractiveTextInput
	if secret {
		input = *input.WithMask("*")
	}
	out, err := input.Show(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prefer the prompt or CLUBHUB_PASSWORD)")

	registerCmd.Flags().StringVarP(&regEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&regFirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&regLastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&regUserType, "user-type", "", "STUDENT (default), ADMIN or EVENT_ADMIN")
}
