package myfitnesspal

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"fitexport/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/myfitnesspal")

const defaultSiteUrl = "https://www.myfitnesspal.com/"
const defaultApiUrl = "https://api.myfitnesspal.com/"

// Client is an authenticated scraping session against the site. It is
// not safe for concurrent use; the whole design is sequential fetch
// then parse.
type Client struct {
	SiteUrl *url.URL
	ApiUrl  *url.URL
	Http    *resty.Client

	// when set, extracted values can be projected into unit-aware
	// quantities by the record types; extraction itself always stores
	// bare numbers
	UnitAware bool

	// overridable for tests that need a fixed "today"
	Now func() time.Time

	accessToken  string
	userId       string
	userMetadata UserMetadata
}

type ClientOptions struct {
	// base url of the scraped site, defaults to production
	SiteUrl string
	// base url of the site's internal json api, defaults to production
	ApiUrl    string
	UnitAware bool
	// when non-nil, every request/response is dumped through it
	InstrumentOutput restyutil.InstrumentOutput
}

type UserMetadata struct {
	Username        string `json:"username"`
	UnitPreferences struct {
		Energy string `json:"energy"`
	} `json:"unit_preferences"`
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.SiteUrl == "" {
		opts.SiteUrl = defaultSiteUrl
	}
	if opts.ApiUrl == "" {
		opts.ApiUrl = defaultApiUrl
	}
	siteUrl, err := url.Parse(opts.SiteUrl)
	if err != nil {
		return nil, err
	}
	apiUrl, err := url.Parse(opts.ApiUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		siteUrl.Hostname(),
		apiUrl.Hostname(),
	))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	c := &Client{
		SiteUrl:   siteUrl,
		ApiUrl:    apiUrl,
		Http:      client,
		UnitAware: opts.UnitAware,
		Now:       time.Now,
	}
	return c, nil
}

func (c *Client) siteLink(ref string) string {
	return resolveLink(c.SiteUrl, ref)
}

func (c *Client) apiLink(ref string) string {
	return resolveLink(c.ApiUrl, ref)
}

func resolveLink(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(parsed).String()
}

// LoginWithCookies imports a pre-authenticated browser cookie jar and
// bootstraps the session from it.
func (c *Client) LoginWithCookies(ctx context.Context, cookies []*http.Cookie) error {
	ctx, span := tracer.Start(ctx, "client:LoginWithCookies")
	defer span.End()

	c.Http.GetClient().Jar.SetCookies(c.SiteUrl, cookies)
	return c.bootstrap(ctx)
}

// LoginUsernamePassword performs a credential login through the
// site's auth callback endpoint.
func (c *Client) LoginUsernamePassword(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:LoginUsernamePassword")
	defer span.End()

	var csrf struct {
		CsrfToken string `json:"csrfToken"`
	}
	err := c.getJson(ctx, c.siteLink("/api/auth/csrf"), &csrf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch csrf token")
		return err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"csrfToken":   csrf.CsrfToken,
			"username":    username,
			"password":    password,
			"callbackUrl": c.siteLink("/account/login"),
			"redirect":    "false",
			"json":        "true",
		}).
		Post(c.siteLink("/api/auth/callback/credentials"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, LoginFailed.Error())
		return LoginFailed
	}

	return c.bootstrap(ctx)
}

// Cookies returns the session cookies currently held for the site,
// for persisting a login across runs.
func (c *Client) Cookies() []*http.Cookie {
	return c.Http.GetClient().Jar.Cookies(c.SiteUrl)
}

func (c *Client) AccessToken() string {
	return c.accessToken
}

func (c *Client) UserId() string {
	return c.userId
}

func (c *Client) UserMetadata() UserMetadata {
	return c.userMetadata
}

// EffectiveUsername is the account's actual username, which may
// differ from the identifier used to log in (e-mail logins).
func (c *Client) EffectiveUsername() string {
	return c.userMetadata.Username
}

type authData struct {
	UserId      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// bootstrap exchanges the session cookies for a bearer token and
// fetches account metadata. A token response that isn't json is the
// only reliable signal the session is not actually logged in.
func (c *Client) bootstrap(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:bootstrap")
	defer span.End()

	link := c.siteLink("/user/auth_token?refresh=true")
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch auth token")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "auth token request failed")
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	if !strings.HasPrefix(res.Header().Get("Content-Type"), "application/json") {
		span.SetStatus(codes.Error, LoginFailed.Error())
		return LoginFailed
	}

	var auth authData
	err = decodeJson(res.Body(), &auth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode auth token")
		return err
	}
	c.accessToken = auth.AccessToken
	c.userId = auth.UserId

	// metadata failure is degraded but not fatal: only e-mail logins
	// depend on the real username it carries
	err = c.fetchUserMetadata(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch user metadata", "err", err)
	}
	return nil
}

func (c *Client) fetchUserMetadata(ctx context.Context) error {
	fields := []string{
		"diary_preferences",
		"goal_preferences",
		"unit_preferences",
		"account",
		"location_preferences",
		"system_data",
		"profiles",
		"privacy_preferences",
		"app_preferences",
	}
	query := url.Values{}
	for _, f := range fields {
		query.Add("fields[]", f)
	}
	link := c.apiLink(fmt.Sprintf("/v2/users/%s?%s", c.userId, query.Encode()))

	var payload struct {
		Item UserMetadata `json:"item"`
	}
	err := c.getApiJson(ctx, link, &payload)
	if err != nil {
		return err
	}
	c.userMetadata = payload.Item
	return nil
}

// getDocument fetches a page and parses it into a goquery document.
func (c *Client) getDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// getJson fetches a url and decodes the response body as json.
func (c *Client) getJson(ctx context.Context, link string, out any) error {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return err
	}
	if res.IsError() {
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	return decodeJson(res.Body(), out)
}

// getApiJson is getJson against the internal api, with the bearer
// token and identifying headers attached.
func (c *Client) getApiJson(ctx context.Context, link string, out any) error {
	req := c.Http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.accessToken).
		SetHeader("mfp-client-id", "mfp-main-js")
	if c.userId != "" {
		req.SetHeader("mfp-user-id", c.userId)
	}

	res, err := req.Get(link)
	if err != nil {
		return err
	}
	if res.IsError() {
		return RequestFailedError{StatusCode: res.StatusCode(), Url: link}
	}
	return decodeJson(res.Body(), out)
}
