package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Store persists logged-in sessions (browser cookies plus the bearer
// token the site hands out) so the CLI doesn't have to re-import
// cookies on every invocation.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	username TEXT PRIMARY KEY,
	cookies TEXT NOT NULL,
	access_token TEXT NOT NULL,
	user_id TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Open opens (and migrates) a session database. `path` may be a local
// file, ":memory:", or a libsql:// url.
func Open(path string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Session struct {
	Username    string
	Cookies     []*http.Cookie
	AccessToken string
	UserId      string
	UpdatedAt   time.Time
}

type savedCookie struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Domain  string `json:"domain"`
	Path    string `json:"path"`
	Expires int64  `json:"expires"`
	Secure  bool   `json:"secure"`
}

func (s Store) Save(ctx context.Context, session Session) error {
	saved := make([]savedCookie, len(session.Cookies))
	for i, c := range session.Cookies {
		saved[i] = savedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: c.Expires.Unix(),
			Secure:  c.Secure,
		}
	}
	cookies, err := json.Marshal(saved)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (username, cookies, access_token, user_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			cookies = excluded.cookies,
			access_token = excluded.access_token,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at`,
		session.Username,
		string(cookies),
		session.AccessToken,
		session.UserId,
		time.Now().Unix(),
	)
	return err
}

func (s Store) Load(ctx context.Context, username string) (Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT username, cookies, access_token, user_id, updated_at
		FROM sessions WHERE username = ?`,
		username,
	)

	var out Session
	var cookies string
	var updatedAt int64
	err := row.Scan(&out.Username, &cookies, &out.AccessToken, &out.UserId, &updatedAt)
	if err != nil {
		return Session{}, err
	}
	out.UpdatedAt = time.Unix(updatedAt, 0)

	var saved []savedCookie
	err = json.Unmarshal([]byte(cookies), &saved)
	if err != nil {
		return Session{}, err
	}
	out.Cookies = make([]*http.Cookie, len(saved))
	for i, c := range saved {
		out.Cookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Path:    c.Path,
			Expires: time.Unix(c.Expires, 0),
			Secure:  c.Secure,
		}
	}
	return out, nil
}

func (s Store) Delete(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE username = ?`, username)
	return err
}
