package client

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/contract"
)

// SessionStore issues and checks session tokens.
type SessionStore interface {
	Touch(ctx context.Context, token string) (map[string]any, error)
	// Login returns "" when no session was issued.
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

// LineStore holds lines and their derived data.
type LineStore interface {
	// Get returns nil, nil when the line does not exist.
	Get(ctx context.Context, token, linetype, id string) (Line, error)
	Save(ctx context.Context, token string, lines []any) ([]any, error)
	Delete(ctx context.Context, token, linetype, id string) ([]any, error)
	Unlink(ctx context.Context, token, linetype, id, parent string) ([]any, error)
	Preview(ctx context.Context, token string, lines []any) ([]any, error)
	Fields(ctx context.Context, token, linetype string) ([]any, error)
	Record(ctx context.Context, token, table, id string) (*RecordResult, error)
	H2N(ctx context.Context, token, hash string) (int64, bool, error)
	N2H(ctx context.Context, token string, n int64) (string, error)
}

// ReportStore serves reports. minVersion is the X-Min-Version the caller
// sent, or "".
type ReportStore interface {
	Reports(ctx context.Context, token string) ([]any, error)
	Linetypes(ctx context.Context, token, report string) ([]any, error)
	Groups(ctx context.Context, token, report, prefix, minVersion string) ([]string, error)
	Report(ctx context.Context, token, report, group, minVersion string) (any, error)
	Refresh(ctx context.Context, token string) (string, error)
	// Version is the store's current version token, or "" before the first
	// write.
	Version(ctx context.Context) string
}

// LocalStore is everything an in-process backend needs.
type LocalStore interface {
	SessionStore
	LineStore
	ReportStore
}

type localHandler struct {
	store LocalStore
}

// NewLocalHandler exposes store over the same paths and wire form as a remote
// server. Every response carries the store's current X-Version, and failures
// are answered with an {exception, message} payload.
func NewLocalHandler(store LocalStore) http.Handler {
	h := &localHandler{store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /touch", h.touch)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.HandleFunc("POST /{$}", h.save)
	mux.HandleFunc("POST /preview", h.preview)
	mux.HandleFunc("GET /reports", h.reports)
	mux.HandleFunc("GET /linetypes", h.linetypes)
	mux.HandleFunc("GET /refresh", h.refresh)
	mux.HandleFunc("GET /fields/{linetype}", h.fields)
	mux.HandleFunc("GET /h2n/{hash}", h.h2n)
	mux.HandleFunc("GET /n2h/{n}", h.n2h)
	mux.HandleFunc("GET /record/{table}/{id}", h.record)
	mux.HandleFunc("GET /report/{report}", h.report)
	mux.HandleFunc("GET /report/{report}/{group}", h.report)
	mux.HandleFunc("GET /report/{report}/groups", h.groups)
	mux.HandleFunc("GET /report/{report}/groups/{prefix}", h.groups)
	mux.HandleFunc("GET /report/{report}/linetypes", h.linetypes)
	mux.HandleFunc("POST /{linetype}/unlink", h.unlink)
	mux.HandleFunc("GET /{linetype}/{id}", h.get)
	mux.HandleFunc("DELETE /{linetype}/{id}", h.delete)
	mux.HandleFunc("/", h.notFound)

	return mux
}

func token(r *http.Request) string {
	return r.Header.Get(common.AuthHeaderName)
}

func minVersion(r *http.Request) string {
	return r.Header.Get(common.MinVersionHeaderName)
}

func (h *localHandler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setVersion(w, r)
	w.Header().Set("Content-Type", common.DefaultContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *localHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := contract.ErrorBody(err)
	h.setVersion(w, r)
	w.Header().Set("Content-Type", common.DefaultContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *localHandler) setVersion(w http.ResponseWriter, r *http.Request) {
	if v := h.store.Version(r.Context()); v != "" {
		w.Header().Set(common.VersionHeaderName, v)
	}
}

func (h *localHandler) replyArray(w http.ResponseWriter, r *http.Request, v []any, err error) {
	if err == nil && v == nil {
		v = []any{}
	}
	h.reply(w, r, v, err)
}

func (h *localHandler) reply(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return common.NewRemoteError(common.KindInvalidInput, "request body is not valid JSON")
	}
	return nil
}

func (h *localHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, common.NewRemoteError(common.KindNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (h *localHandler) touch(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Touch(r.Context(), token(r))
	h.reply(w, r, v, err)
}

func (h *localHandler) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &creds); err != nil {
		h.writeError(w, r, err)
		return
	}

	tok, err := h.store.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tok == "" {
		h.writeJSON(w, r, nil)
		return
	}
	h.writeJSON(w, r, tok)
}

func (h *localHandler) logout(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Logout(r.Context(), token(r))
	h.reply(w, r, v, err)
}

func (h *localHandler) save(w http.ResponseWriter, r *http.Request) {
	var lines []any
	if err := decodeBody(r, &lines); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.store.Save(r.Context(), token(r), lines)
	h.replyArray(w, r, v, err)
}

func (h *localHandler) preview(w http.ResponseWriter, r *http.Request) {
	var lines []any
	if err := decodeBody(r, &lines); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.store.Preview(r.Context(), token(r), lines)
	h.replyArray(w, r, v, err)
}

func (h *localHandler) unlink(w http.ResponseWriter, r *http.Request) {
	var links []struct {
		ID     string `json:"id"`
		Parent string `json:"parent"`
	}
	if err := decodeBody(r, &links); err != nil {
		h.writeError(w, r, err)
		return
	}

	var result []any
	for _, l := range links {
		v, err := h.store.Unlink(r.Context(), token(r), r.PathValue("linetype"), l.ID, l.Parent)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		result = append(result, v...)
	}
	if result == nil {
		result = []any{}
	}
	h.writeJSON(w, r, result)
}

func (h *localHandler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Get(r.Context(), token(r), r.PathValue("linetype"), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if v == nil {
		h.writeJSON(w, r, nil)
		return
	}
	h.writeJSON(w, r, v)
}

func (h *localHandler) delete(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Delete(r.Context(), token(r), r.PathValue("linetype"), r.PathValue("id"))
	h.replyArray(w, r, v, err)
}

func (h *localHandler) fields(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Fields(r.Context(), token(r), r.PathValue("linetype"))
	h.replyArray(w, r, v, err)
}

func (h *localHandler) record(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Record(r.Context(), token(r), r.PathValue("table"), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setVersion(w, r)
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	if rec.Filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.Filename}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.Content)
}

func (h *localHandler) h2n(w http.ResponseWriter, r *http.Request) {
	n, ok, err := h.store.H2N(r.Context(), token(r), r.PathValue("hash"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeJSON(w, r, nil)
		return
	}
	h.writeJSON(w, r, n)
}

func (h *localHandler) n2h(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(r.PathValue("n"), 10, 64)
	if err != nil {
		h.writeError(w, r, common.NewRemoteError(common.KindInvalidInput, "invalid sequence number %q", r.PathValue("n")))
		return
	}
	v, err := h.store.N2H(r.Context(), token(r), n)
	h.reply(w, r, v, err)
}

func (h *localHandler) reports(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Reports(r.Context(), token(r))
	h.replyArray(w, r, v, err)
}

func (h *localHandler) linetypes(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Linetypes(r.Context(), token(r), r.PathValue("report"))
	h.replyArray(w, r, v, err)
}

func (h *localHandler) groups(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Groups(r.Context(), token(r), r.PathValue("report"), r.PathValue("prefix"), minVersion(r))
	if err == nil && v == nil {
		v = []string{}
	}
	h.reply(w, r, v, err)
}

func (h *localHandler) report(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Report(r.Context(), token(r), r.PathValue("report"), r.PathValue("group"), minVersion(r))
	h.reply(w, r, v, err)
}

func (h *localHandler) refresh(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Refresh(r.Context(), token(r))
	h.reply(w, r, v, err)
}
