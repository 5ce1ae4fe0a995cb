package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "facturas/internal/sources/google"
)

const authTimeout = 5 * time.Minute

func sheetsAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize read access to the billing spreadsheet",
		Long: `Run the OAuth consent flow for the Google Sheets live source and save the
resulting token to GOOGLE_OAUTH_TOKEN_FILE. The OAuth client must list
http://localhost:<OAUTH_REDIRECT_PORT>/callback as an authorized redirect URI.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			clientJSON, err := gsheet.ReadClientSecret(appConfig.GoogleOAuthClientJSON, appConfig.GoogleOAuthClientFile)
			if err != nil {
				return err
			}

			port := strconv.Itoa(appConfig.OAuthRedirectPort)
			oauthCfg, err := gsheet.OAuthConfig(clientJSON, "http://localhost:"+port+"/callback")
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", "localhost:"+port)
			if err != nil {
				return fmt.Errorf("listen for OAuth callback: %w", err)
			}

			state := gsheet.NewState()
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)
			srv := &http.Server{Handler: callbackHandler(state, codeCh, errCh), ReadHeaderTimeout: 10 * time.Second}
			go func() { _ = srv.Serve(ln) }()
			defer srv.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

			var code string
			select {
			case code = <-codeCh:
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return fmt.Errorf("authorization not completed: %w", ctx.Err())
			}

			tok, err := oauthCfg.Exchange(ctx, code)
			if err != nil {
				return fmt.Errorf("token exchange: %w", err)
			}
			if err := gsheet.SaveToken(appConfig.GoogleOAuthTokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved token to %s\n", appConfig.GoogleOAuthTokenFile)
			return nil
		},
	}
}

// callbackHandler delivers the authorization code of a redirect carrying
// the expected state.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			send(errCh, fmt.Errorf("authorization denied: %s", e))
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			send(errCh, errors.New("callback without authorization code"))
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		send(codeCh, code)
	})
	return mux
}

// send delivers v unless a value is already pending.
func send[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}
