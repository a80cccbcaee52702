package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/jarsclient/internal/api"
	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/filex"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

var (
	errColor = color.New(color.FgRed)
	okColor  = color.New(color.FgGreen)
)

func (a *App) getStatus() string {
	var parts []string
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if v := a.client.Version(); v != "" {
		parts = append(parts, "v:"+v[:8])
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// fail prints err for the user and returns it. A rejected token is dropped so
// the prompt stops claiming a session.
func (a *App) fail(ctx context.Context, err error) error {
	printlnFn(errColor.Sprint("error: ", err))
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		a.client.SetToken("")
		a.userName = ""
		a.forgetSession(ctx)
		printlnFn("Session is no longer valid, please login again")
	case errors.Is(err, common.ErrTimeout):
		printlnFn("The store did not answer in time")
	}
	return err
}

func (a *App) ok(msg string) {
	printlnFn(okColor.Sprint(msg))
}

func (a *App) printJSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	printlnFn(strings.TrimRight(buf.String(), "\n"))
	return nil
}

func (a *App) Touch(ctx context.Context) error {
	res, err := a.client.Touch(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	if name, ok := res["username"].(string); ok {
		a.userName = name
	}
	return a.printJSON(res)
}

// Login prompts for credentials and adopts the session token on success.
// The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		return a.fail(ctx, err)
	}
	if token == "" {
		printlnFn(errColor.Sprint("Login rejected"))
		return nil
	}

	a.userName = userName
	a.saveSession(ctx)
	a.ok("Logged in as " + userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	done, err := a.client.Logout(ctx)
	a.client.SetToken("")
	a.userName = ""
	a.forgetSession(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	if done {
		a.ok("Logged out")
	} else {
		printlnFn("No active session on the store")
	}
	return nil
}

func (a *App) Get(ctx context.Context, linetype, id string) error {
	line, err := a.client.Get(ctx, linetype, id)
	if err != nil {
		return a.fail(ctx, err)
	}
	if line == nil {
		printlnFn("No such line")
		return nil
	}
	return a.printJSON(line)
}

// readLines asks for one JSON document or an array of them.
func (a *App) readLines() ([]any, error) {
	text, err := getMultiline(a.reader, "Enter a JSON line or an array of lines", a.out)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return []any{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	switch doc := v.(type) {
	case []any:
		return doc, nil
	case map[string]any:
		return []any{doc}, nil
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", common.ErrValidation)
	}
}

func (a *App) Save(ctx context.Context) error {
	lines, err := a.readLines()
	if err != nil {
		return a.fail(ctx, err)
	}
	saved, err := a.client.Save(ctx, lines)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(saved)
}

func (a *App) Preview(ctx context.Context) error {
	lines, err := a.readLines()
	if err != nil {
		return a.fail(ctx, err)
	}
	preview, err := a.client.Preview(ctx, lines)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(preview)
}

func (a *App) Delete(ctx context.Context, linetype, id string) error {
	res, err := a.client.Delete(ctx, linetype, id)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

func (a *App) Unlink(ctx context.Context, linetype, id, parent string) error {
	res, err := a.client.Unlink(ctx, linetype, id, parent)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

func (a *App) Fields(ctx context.Context, linetype string) error {
	res, err := a.client.Fields(ctx, linetype)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

// Record downloads a record into the records directory under the name the
// store suggests, never overwriting an existing file.
func (a *App) Record(ctx context.Context, table, id string) error {
	res, err := a.client.Record(ctx, table, id)
	if err != nil {
		return a.fail(ctx, err)
	}

	dir, err := filex.EnsureSubDir(recordDir)
	if err != nil {
		return a.fail(ctx, err)
	}
	path, err := filex.SaveUnique(dir, filex.SafeName(res.Filename, table+"-"+id), res.Content)
	if err != nil {
		return a.fail(ctx, err)
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "unknown type"
	}
	a.ok(fmt.Sprintf("Saved %d bytes (%s) to %s", len(res.Content), contentType, path))
	return nil
}

func (a *App) Groups(ctx context.Context, report, prefix string, min api.MinVersion) error {
	groups, err := a.client.Groups(ctx, report, prefix, min)
	if err != nil {
		return a.fail(ctx, err)
	}
	if len(groups) == 0 {
		printlnFn("No groups")
		return nil
	}
	for _, g := range groups {
		printlnFn(g)
	}
	return nil
}

func (a *App) Report(ctx context.Context, report, group string, min api.MinVersion) error {
	res, err := a.client.Report(ctx, report, group, min)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

func (a *App) Linetypes(ctx context.Context, report string) error {
	res, err := a.client.Linetypes(ctx, report)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

func (a *App) Reports(ctx context.Context) error {
	res, err := a.client.Reports(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}

func (a *App) H2N(ctx context.Context, hash string) error {
	n, found, err := a.client.H2N(ctx, hash)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !found {
		printlnFn("No line with that hash")
		return nil
	}
	printlnFn(strconv.FormatInt(n, 10))
	return nil
}

func (a *App) N2H(ctx context.Context, n string) error {
	num, err := strconv.ParseInt(n, 10, 64)
	if err != nil {
		return a.fail(ctx, fmt.Errorf("%w: %q is not a number", common.ErrValidation, n))
	}
	hash, err := a.client.N2H(ctx, num)
	if err != nil {
		return a.fail(ctx, err)
	}
	printlnFn(hash)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	v, err := a.client.Refresh(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	printlnFn(v)
	return nil
}

func (a *App) ShowVersion(ctx context.Context) error {
	v := a.client.Version()
	if v == "" {
		v = "(none observed)"
	}
	printlnFn(v)
	return nil
}

// Call sends an arbitrary request and prints the decoded body.
func (a *App) Call(ctx context.Context, method, path, body string) error {
	var payload any
	if body != "" {
		raw, err := api.ParsePayload([]byte(body))
		if err != nil {
			return a.fail(ctx, err)
		}
		if raw != nil {
			payload = raw
		}
	}

	res, err := a.client.ExecuteJSON(ctx, api.NewRequest(method, path, payload))
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.printJSON(res)
}
