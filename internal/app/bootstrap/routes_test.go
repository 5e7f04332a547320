package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/assignportal/internal/app/system/reqlog"
	"github.com/dalemusser/assignportal/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type portal struct {
	t      *testing.T
	router http.Handler
}

func newPortal(t *testing.T, mutate func(*AppConfig)) *portal {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	appCfg := validConfig()
	appCfg.BcryptCost = bcrypt.MinCost
	appCfg.AuditLogAuth = "db"
	appCfg.AuditLogAdmin = "db"
	if mutate != nil {
		mutate(&appCfg)
	}
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, LoginLimiter: newLoginLimiter(appCfg)}
	t.Cleanup(deps.LoginLimiter.Stop)

	require.NoError(t, EnsureSchema(ctx, &config.CoreConfig{}, appCfg, deps, testLogger()))
	h, err := BuildHandler(&config.CoreConfig{}, appCfg, deps, testLogger())
	require.NoError(t, err)
	return &portal{t: t, router: h}
}

func (p *portal) call(method, target, token string, body any) *testutil.ResponseRecorder {
	p.t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(p.t, method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		testutil.WithBearer(req, token)
	}
	rec := testutil.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func (p *portal) login(username, password string) string {
	p.t.Helper()
	rec := p.call("POST", "/login", "", map[string]string{"username": username, "password": password})
	rec.AssertStatus(p.t, http.StatusOK)
	var body struct {
		Token string `json:"token"`
	}
	rec.DecodeJSON(p.t, &body)
	require.NotEmpty(p.t, body.Token)
	return body.Token
}

func TestRouter_EndToEnd(t *testing.T) {
	p := newPortal(t, nil)

	p.call("POST", "/register", "", map[string]string{"username": "alice", "password": "pw1", "role": "user"}).
		AssertStatus(t, http.StatusCreated)
	p.call("POST", "/register", "", map[string]string{"username": "bob", "password": "pw2", "role": "admin"}).
		AssertStatus(t, http.StatusCreated)

	tokenA := p.login("alice", "pw1")
	tokenB := p.login("bob", "pw2")

	rec := p.call("GET", "/admins", "", nil)
	rec.AssertStatus(t, http.StatusOK)
	assert.JSONEq(t, `[{"username":"bob"}]`, rec.Body.String())

	rec = p.call("POST", "/upload", tokenA, map[string]string{"task": "hw1", "admin": "bob"})
	rec.AssertStatus(t, http.StatusCreated)
	var uploaded struct {
		ID string `json:"id"`
	}
	rec.DecodeJSON(t, &uploaded)
	require.NotEmpty(t, uploaded.ID)

	rec = p.call("GET", "/assignments", tokenB, nil)
	rec.AssertStatus(t, http.StatusOK)
	var list []map[string]any
	rec.DecodeJSON(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, uploaded.ID, list[0]["_id"])
	assert.Equal(t, "hw1", list[0]["task"])
	assert.Equal(t, "bob", list[0]["admin"])
	assert.Equal(t, "pending", list[0]["status"])

	// alice is not an admin
	p.call("GET", "/assignments", tokenA, nil).AssertStatus(t, http.StatusForbidden)

	rec = p.call("POST", "/assignments/"+uploaded.ID+"/accept", tokenB, nil)
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "Assignment accepted", rec.Message(t))

	// decided assignments leave the pending queue and cannot be re-decided
	rec = p.call("GET", "/assignments", tokenB, nil)
	rec.AssertStatus(t, http.StatusOK)
	assert.JSONEq(t, "[]", rec.Body.String())
	p.call("POST", "/assignments/"+uploaded.ID+"/reject", tokenB, nil).AssertStatus(t, http.StatusConflict)

	// alice sees the outcome of her own submission
	rec = p.call("GET", "/assignments/mine", tokenA, nil)
	rec.AssertStatus(t, http.StatusOK)
	var mine []map[string]any
	rec.DecodeJSON(t, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "accepted", mine[0]["status"])

	// the review is on the admin audit trail
	p.call("GET", "/audit", tokenA, nil).AssertStatus(t, http.StatusForbidden)
	rec = p.call("GET", "/audit?category=admin", tokenB, nil)
	rec.AssertStatus(t, http.StatusOK)
	var trail struct {
		Total int64 `json:"total"`
	}
	rec.DecodeJSON(t, &trail)
	assert.Equal(t, int64(1), trail.Total)
}

func TestRouter_PaddedUsernameRoundTrip(t *testing.T) {
	p := newPortal(t, nil)

	p.call("POST", "/register", "", map[string]string{"username": " alice ", "password": "pw1"}).
		AssertStatus(t, http.StatusCreated)
	p.login(" alice ", "pw1")
	p.login("alice", "pw1")

	rec := p.call("POST", "/register", "", map[string]string{"username": "alice", "password": strings.Repeat("x", 73)})
	rec.AssertStatus(t, http.StatusBadRequest)
	assert.Equal(t, "Password must be at most 72 bytes", rec.Message(t))
}

func TestRouter_AuthFailures(t *testing.T) {
	p := newPortal(t, nil)

	p.call("POST", "/register", "", map[string]string{"username": "alice", "password": "pw1"}).
		AssertStatus(t, http.StatusCreated)
	p.call("POST", "/register", "", map[string]string{"username": "alice", "password": "other"}).
		AssertStatus(t, http.StatusBadRequest)

	p.call("POST", "/login", "", map[string]string{"username": "alice", "password": "nope"}).
		AssertStatus(t, http.StatusUnauthorized)

	body := map[string]string{"task": "hw1", "admin": "bob"}
	p.call("POST", "/upload", "", body).AssertStatus(t, http.StatusUnauthorized)
	p.call("POST", "/upload", "garbage", body).AssertStatus(t, http.StatusUnauthorized)

	// valid token, but bob does not exist as an admin
	tokenA := p.login("alice", "pw1")
	p.call("POST", "/upload", tokenA, body).AssertStatus(t, http.StatusBadRequest)
}

func TestRouter_LoginThrottled(t *testing.T) {
	p := newPortal(t, func(c *AppConfig) {
		c.LoginRateLimit = 2
		c.LoginRateWindow = time.Minute
	})

	body := map[string]string{"username": "ghost", "password": "guess"}
	p.call("POST", "/login", "", body).AssertStatus(t, http.StatusUnauthorized)
	p.call("POST", "/login", "", body).AssertStatus(t, http.StatusUnauthorized)
	p.call("POST", "/login", "", body).AssertStatus(t, http.StatusTooManyRequests)
}

func TestRouter_JSONEverywhere(t *testing.T) {
	p := newPortal(t, nil)

	rec := p.call("GET", "/nope", "", nil)
	rec.AssertStatus(t, http.StatusNotFound)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(reqlog.Header))

	rec = p.call("GET", "/health", "", nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"database":"connected"`)
}
