package myfitnesspal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func loginServer(t *testing.T, loggedIn bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/csrf":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"csrfToken": "csrf123"}`)
		case "/api/auth/callback/credentials":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "csrf123", r.PostForm.Get("csrfToken"))
			require.Equal(t, "jane", r.PostForm.Get("username"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{}`)
		case "/user/auth_token":
			if !loggedIn {
				// an anonymous session gets the login page back
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, `<html><body>Please log in.</body></html>`)
				return
			}
			require.Equal(t, "true", r.URL.Query().Get("refresh"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"user_id": "u-42", "access_token": "at-9000", "token_type": "Bearer"}`)
		case "/v2/users/u-42":
			require.Equal(t, "Bearer at-9000", r.Header.Get("Authorization"))
			require.Equal(t, "u-42", r.Header.Get("mfp-user-id"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"item": {"username": "jane_doe", "unit_preferences": {"energy": "calories"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestLoginUsernamePassword(t *testing.T) {
	server := loginServer(t, true)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	err = client.LoginUsernamePassword(context.Background(), "jane", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "at-9000", client.AccessToken())
	require.Equal(t, "u-42", client.UserId())

	// the login identifier and the account username can differ
	require.Equal(t, "jane_doe", client.EffectiveUsername())
	require.Equal(t, "calories", client.UserMetadata().UnitPreferences.Energy)
}

func TestLoginFailed(t *testing.T) {
	server := loginServer(t, false)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	err = client.LoginUsernamePassword(context.Background(), "jane", "wrong")
	require.ErrorIs(t, err, LoginFailed)
}

func TestLoginWithCookies(t *testing.T) {
	server := loginServer(t, true)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{
		SiteUrl: server.URL,
		ApiUrl:  server.URL,
	})
	require.NoError(t, err)

	cookies := []*http.Cookie{{Name: "session", Value: "abc"}}
	err = client.LoginWithCookies(context.Background(), cookies)
	require.NoError(t, err)
	require.Equal(t, "at-9000", client.AccessToken())

	found := false
	for _, c := range client.Cookies() {
		if c.Name == "session" && c.Value == "abc" {
			found = true
		}
	}
	require.True(t, found)
}
