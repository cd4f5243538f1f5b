package commands

import (
	"context"
	"log/slog"
	"time"

	"fitexport/lib/configutil"
	"fitexport/lib/restyutil"
	"fitexport/lib/scrapers/myfitnesspal"
	"fitexport/lib/sessionstore"
	"fitexport/lib/util/serviceutil"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// createClient builds a logged-in client, preferring a persisted
// session over a fresh credential login. Fresh logins are saved back
// so the next invocation can skip the password flow.
func createClient(ctx context.Context) *myfitnesspal.Client {
	ctx, cancel := context.WithTimeout(ctx, time.Second*60)
	defer cancel()

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	opts := myfitnesspal.ClientOptions{}
	if *instrumentDir != "" {
		opts.InstrumentOutput = restyutil.NewFilesystemOutput(*instrumentDir)
	}
	client, err := myfitnesspal.NewClient(ctx, opts)
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}

	db, err := sessionstore.Open(*sessionsPath)
	if err != nil {
		serviceutil.Fatal("failed to open session database", err)
	}
	defer db.Close()
	store := sessionstore.NewStore(db)

	session, err := store.Load(ctx, cfg.Username)
	if err == nil {
		err = client.LoginWithCookies(ctx, session.Cookies)
		if err == nil {
			slog.Debug("resumed persisted session", "username", cfg.Username)
			return client
		}
		slog.Warn("persisted session no longer works, logging in again", "err", err)
	}

	err = client.LoginUsernamePassword(ctx, cfg.Username, cfg.Password)
	if err != nil {
		serviceutil.Fatal("failed to login", err)
	}

	err = store.Save(ctx, sessionstore.Session{
		Username:    cfg.Username,
		Cookies:     client.Cookies(),
		AccessToken: client.AccessToken(),
		UserId:      client.UserId(),
	})
	if err != nil {
		slog.Warn("failed to persist session", "err", err)
	}
	return client
}
