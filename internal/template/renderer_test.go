package template

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/ghaggin/randomtables/internal/backend"
	"github.com/ghaggin/randomtables/internal/form"
	"github.com/ghaggin/randomtables/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, tmpl string, td any) string {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, Render(buf, tmpl, td))
	return buf.String()
}

func TestRender_Home(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Welcome to Random Tables Web!\n", render(t, "home.tmpl", Home{}))
	assert.Equal("Welcome alice to Random Tables Web!\n",
		render(t, "home.tmpl", Home{User: &model.Identity{Username: "alice"}}))
}

func TestRender_Account(t *testing.T) {
	assert := assert.New(t)

	out := render(t, "account.tmpl", Account{Account: &model.Account{Name: "alice"}})
	assert.Contains(out, "alice\n")
	assert.Contains(out, "List of random tables")
	assert.Contains(out, "No Tables Found.")

	out = render(t, "account.tmpl", Account{Account: &model.Account{Name: "alice"}, Tables: []string{"Weather", "Loot"}})
	assert.Contains(out, "- Weather\n")
	assert.Contains(out, "- Loot\n")
	assert.NotContains(out, "No Tables Found.")
}

func TestRender_Status(t *testing.T) {
	out := render(t, "status.tmpl", Status{Session: model.Session{
		State:            model.Authenticated,
		User:             &model.Identity{Username: "alice"},
		HasSessionCookie: true,
	}})
	assert.Equal(t, "state: authenticated\nuser: alice\ncookie: present\n", out)
}

func TestRender_UnknownTemplate(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.Error(t, Render(buf, "nope.tmpl", nil))
	assert.Zero(t, buf.Len())
}

func TestAccountErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &backend.AuthError{Op: "fetch account", Status: http.StatusNotFound, Message: "Account not found"}, "Account not found"},
		{"server error", &backend.AuthError{Op: "fetch account", Status: http.StatusInternalServerError, Message: "Internal Server Error"}, "Error: Internal Server Error"},
		{"network", &backend.NetworkError{Op: "fetch account", Err: errors.New("dial tcp: refused")}, "Could not reach the server"},
		{"validation", &form.ValidationError{Message: form.MsgPasswordMismatch}, "Passwords do not match"},
		{"other", errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccountErrorMessage(tt.err))
		})
	}
}
