package stub

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghaggin/randomtables/internal/config"
	"github.com/ghaggin/randomtables/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	h, err := NewHandler(config.Default(), zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func send(t *testing.T, c *http.Client, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStub_SignupLoginWhoisLogout(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	ts, c := newTestServer(t)

	resp := send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)
	assert.Equal(http.StatusCreated, resp.StatusCode)

	resp = send(t, c, http.MethodGet, ts.URL+"/whois", "")
	assert.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"secret123"}`)
	require.Equal(http.StatusOK, resp.StatusCode)
	var id model.Identity
	require.NoError(json.NewDecoder(resp.Body).Decode(&id))
	assert.Equal("alice", id.Username)

	var names []string
	for _, ck := range resp.Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(names, "EXAUTH")

	resp = send(t, c, http.MethodGet, ts.URL+"/whois", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	require.NoError(json.NewDecoder(resp.Body).Decode(&id))
	assert.Equal("alice", id.Username)

	resp = send(t, c, http.MethodPost, ts.URL+"/logout", "")
	assert.Equal(http.StatusOK, resp.StatusCode)

	resp = send(t, c, http.MethodGet, ts.URL+"/whois", "")
	assert.Equal(http.StatusUnauthorized, resp.StatusCode)

	// a second logout without a session still succeeds
	resp = send(t, c, http.MethodPost, ts.URL+"/logout", "")
	assert.Equal(http.StatusOK, resp.StatusCode)
}

func TestStub_LoginRejectsBadPassword(t *testing.T) {
	ts, c := newTestServer(t)

	send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)

	resp := send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"nobody","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStub_SignupValidation(t *testing.T) {
	ts, c := newTestServer(t)

	resp := send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"al","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)
	resp = send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStub_ChangePasswordRequiresSession(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	ts, c := newTestServer(t)

	resp := send(t, c, http.MethodPut, ts.URL+"/change-password", `{"password":"newsecret1"}`)
	assert.Equal(http.StatusUnauthorized, resp.StatusCode)

	send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)
	resp = send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"secret123"}`)
	require.Equal(http.StatusOK, resp.StatusCode)

	resp = send(t, c, http.MethodPut, ts.URL+"/change-password", `{"password":"newsecret1"}`)
	assert.Equal(http.StatusOK, resp.StatusCode)

	send(t, c, http.MethodPost, ts.URL+"/logout", "")
	resp = send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"secret123"}`)
	assert.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp = send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"newsecret1"}`)
	assert.Equal(http.StatusOK, resp.StatusCode)
}

func TestStub_ChangeUsername(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	ts, c := newTestServer(t)
	send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)
	send(t, c, http.MethodPost, ts.URL+"/login", `{"username":"alice","password":"secret123"}`)

	resp := send(t, c, http.MethodPut, ts.URL+"/change-username", `{"username":"alicia"}`)
	require.Equal(http.StatusOK, resp.StatusCode)
	var id model.Identity
	require.NoError(json.NewDecoder(resp.Body).Decode(&id))
	assert.Equal("alicia", id.Username)
	assert.Equal(1, id.ID)
}

func TestStub_AccountByID(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	ts, c := newTestServer(t)
	send(t, c, http.MethodPost, ts.URL+"/signup", `{"username":"alice","password":"secret123"}`)

	resp := send(t, c, http.MethodGet, ts.URL+"/account/id/1/", "")
	require.Equal(http.StatusOK, resp.StatusCode)
	var acct model.Account
	require.NoError(json.NewDecoder(resp.Body).Decode(&acct))
	assert.Equal("alice", acct.Name)

	resp = send(t, c, http.MethodGet, ts.URL+"/account/id/42/", "")
	assert.Equal(http.StatusNotFound, resp.StatusCode)

	resp = send(t, c, http.MethodGet, ts.URL+"/account/id/abc/", "")
	assert.Equal(http.StatusNotFound, resp.StatusCode)
}
