package template

import (
	"bytes"
	"embed"
	"errors"
	"io"
	"text/template"

	"github.com/ghaggin/randomtables/internal/backend"
	"github.com/ghaggin/randomtables/internal/form"
	"github.com/ghaggin/randomtables/internal/model"
)

const (
	templateDir string = "tmpl"

	msgAccountNotFound = "Account not found"
	msgUnreachable     = "Could not reach the server"
)

//go:embed tmpl/*.tmpl
var files embed.FS

var templates = template.Must(template.ParseFS(files, templateDir+"/*.tmpl"))

// Home is the data for the landing greeting.
type Home struct {
	User *model.Identity
}

type Account struct {
	Account *model.Account
	Tables  []string
}

type Status struct {
	Session model.Session
}

// Render executes tmpl into w. Output is buffered so a failing template
// writes nothing.
func Render(w io.Writer, tmpl string, td any) error {
	buf := &bytes.Buffer{}

	err := templates.ExecuteTemplate(buf, tmpl, td)
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(w)
	return err
}

// ErrorMessage is the text a consumer shows for a failed operation.
func ErrorMessage(err error) string {
	var vErr *form.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		return msgUnreachable
	}

	var authErr *backend.AuthError
	if errors.As(err, &authErr) {
		return "Error: " + authErr.Message
	}

	return "Error: " + err.Error()
}

// AccountErrorMessage is ErrorMessage with a 404 spelled out.
func AccountErrorMessage(err error) string {
	if backend.IsNotFound(err) {
		return msgAccountNotFound
	}
	return ErrorMessage(err)
}
