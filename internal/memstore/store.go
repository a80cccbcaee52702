package memstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/jarsclient/internal/api"
	"github.com/dmitrijs2005/jarsclient/internal/client/client"
	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/logging"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source used for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.sessions.now = now }
}

// WithBcryptCost sets the cost used to hash seeded plain-text passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

type storedLine struct {
	line client.Line
	n    int64
	hash string
}

type record struct {
	content     []byte
	contentType string
	filename    string
}

// Store is an in-memory LocalStore.
type Store struct {
	log        logging.Logger
	bcryptCost int

	mu        sync.Mutex
	sessions  *sessions
	users     map[string][]byte
	linetypes map[string][]any
	reports   map[string]SeedReport
	records   map[string]map[string]record
	lines     map[string]map[string]*storedLine
	byHash    map[string]*storedLine
	byN       map[int64]*storedLine
	seq       int64
	version   string
	issued    map[string]struct{}
}

var _ client.LocalStore = (*Store)(nil)

// New builds a store from seed.
func New(seed *Seed, opts ...Option) (*Store, error) {
	if seed == nil {
		seed = &Seed{}
	}

	s := &Store{
		log:        logging.Discard(),
		bcryptCost: bcrypt.DefaultCost,
		sessions: &sessions{
			ttl:     seed.SessionTTL.Duration,
			now:     time.Now,
			revoked: map[string]struct{}{},
		},
		users:     map[string][]byte{},
		linetypes: map[string][]any{},
		reports:   map[string]SeedReport{},
		records:   map[string]map[string]record{},
		lines:     map[string]map[string]*storedLine{},
		byHash:    map[string]*storedLine{},
		byN:       map[int64]*storedLine{},
		issued:    map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if seed.Secret != "" {
		s.sessions.secret = []byte(seed.Secret)
	} else {
		s.sessions.secret = common.GenerateRandByteArray(32)
	}
	if s.sessions.ttl <= 0 {
		s.sessions.ttl = DefaultSessionTTL
	}

	for _, u := range seed.Users {
		if u.Username == "" {
			return nil, errors.New("seed user without username")
		}
		hash := []byte(u.PasswordHash)
		if len(hash) == 0 {
			var err error
			hash, err = bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
		}
		s.users[u.Username] = hash
	}

	for name, fields := range seed.Linetypes {
		s.linetypes[name] = fields
	}
	for name, rep := range seed.Reports {
		s.reports[name] = rep
	}
	for table, recs := range seed.Records {
		s.records[table] = map[string]record{}
		for id, r := range recs {
			content, err := r.bytes()
			if err != nil {
				return nil, fmt.Errorf("record %s/%s: %w", table, id, err)
			}
			s.records[table][id] = record{content: content, contentType: r.ContentType, filename: r.Filename}
		}
	}

	s.advance(nil)

	if len(seed.Lines) > 0 {
		lines := make([]any, 0, len(seed.Lines))
		for _, l := range seed.Lines {
			lines = append(lines, l)
		}
		if _, err := s.save(lines); err != nil {
			return nil, fmt.Errorf("seed lines: %w", err)
		}
	}

	return s, nil
}

// advance chains the version with change and records the new token as
// issued.
func (s *Store) advance(change []byte) {
	h := sha256.New()
	h.Write([]byte(s.version))
	h.Write(change)
	s.version = hex.EncodeToString(h.Sum(nil))
	s.issued[s.version] = struct{}{}
}

func (s *Store) checkMinVersion(minVersion string) error {
	if minVersion == "" {
		return nil
	}
	if !api.IsVersionToken(minVersion) {
		return common.NewRemoteError(common.KindInvalidInput, "malformed min version")
	}
	if _, ok := s.issued[minVersion]; !ok {
		return common.NewRemoteError(common.KindConflict, "version %s is not known", minVersion)
	}
	return nil
}

func (s *Store) authenticate(token string) (*Claims, error) {
	if token == "" {
		return nil, common.NewRemoteError(common.KindBadToken, "missing token")
	}
	c, err := s.sessions.parse(token)
	if err != nil {
		return nil, common.NewRemoteError(common.KindBadToken, "invalid or expired token")
	}
	return c, nil
}

func (s *Store) Version(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Touch(ctx context.Context, token string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := map[string]any{"ok": true, "authenticated": false}
	if token != "" {
		if c, err := s.sessions.parse(token); err == nil {
			result["authenticated"] = true
			result["username"] = c.Username
		}
	}
	return result, nil
}

func (s *Store) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", common.NewRemoteError(common.KindInvalidInput, "username and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.users[username]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		s.log.Info(ctx, "login refused", "username", username)
		return "", common.NewRemoteError(common.KindBadUsernameOrPassword, "bad username or password")
	}

	token, err := s.sessions.issue(username)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "login", "username", username)
	return token, nil
}

// Logout revokes the session. It reports false when the token was not a live
// session.
func (s *Store) Logout(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.sessions.parse(token)
	if err != nil {
		return false, nil
	}
	s.sessions.revoke(c)
	return true, nil
}

func (s *Store) Get(ctx context.Context, token, linetype, id string) (client.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	if _, ok := s.linetypes[linetype]; !ok {
		return nil, common.NewRemoteError(common.KindNotFound, "unknown linetype %s", linetype)
	}
	sl, ok := s.lines[linetype][id]
	if !ok {
		return nil, nil
	}
	return cloneLine(sl.line), nil
}

func (s *Store) Save(ctx context.Context, token string, lines []any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	return s.save(lines)
}

func (s *Store) save(lines []any) ([]any, error) {
	prepared, err := s.prepare(lines)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return []any{}, nil
	}

	result := make([]any, 0, len(prepared))
	for _, line := range prepared {
		linetype, id := line["type"].(string), line["id"].(string)
		if s.lines[linetype] == nil {
			s.lines[linetype] = map[string]*storedLine{}
		}
		sl, ok := s.lines[linetype][id]
		if !ok {
			s.seq++
			sl = &storedLine{n: s.seq, hash: lineHash(linetype, id)}
			s.lines[linetype][id] = sl
			s.byHash[sl.hash] = sl
			s.byN[sl.n] = sl
		}
		sl.line = line
		result = append(result, cloneLine(line))
	}

	change, err := json.Marshal(prepared)
	if err != nil {
		return nil, err
	}
	s.advance(change)
	return result, nil
}

// prepare validates lines and assigns ids to new ones.
func (s *Store) prepare(lines []any) ([]client.Line, error) {
	out := make([]client.Line, 0, len(lines))
	for i, raw := range lines {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, common.NewRemoteError(common.KindInvalidInput, "line %d is not an object", i)
		}
		line := cloneLine(obj)

		linetype, _ := line["type"].(string)
		if linetype == "" {
			return nil, common.NewRemoteError(common.KindInvalidInput, "line %d has no type", i)
		}
		if _, ok := s.linetypes[linetype]; !ok {
			return nil, common.NewRemoteError(common.KindNotFound, "unknown linetype %s", linetype)
		}

		switch id := line["id"].(type) {
		case nil:
			line["id"] = newID()
		case string:
			if id == "" {
				line["id"] = newID()
			}
		default:
			return nil, common.NewRemoteError(common.KindInvalidInput, "line %d has a non-string id", i)
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *Store) Preview(ctx context.Context, token string, lines []any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	prepared, err := s.prepare(lines)
	if err != nil {
		return nil, err
	}
	result := make([]any, 0, len(prepared))
	for _, l := range prepared {
		result = append(result, l)
	}
	return result, nil
}

func (s *Store) Delete(ctx context.Context, token, linetype, id string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	if _, ok := s.lines[linetype][id]; !ok {
		return nil, common.NewRemoteError(common.KindNotFound, "no %s line with id %s", linetype, id)
	}
	delete(s.lines[linetype], id)

	deleted := client.Line{"type": linetype, "id": id, "_is": false}
	change, err := json.Marshal(deleted)
	if err != nil {
		return nil, err
	}
	s.advance(change)
	return []any{deleted}, nil
}

func (s *Store) Unlink(ctx context.Context, token, linetype, id, parent string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	return nil, common.NewRemoteError(common.KindException, "Not implemented")
}

func (s *Store) Fields(ctx context.Context, token, linetype string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	fields, ok := s.linetypes[linetype]
	if !ok {
		return nil, common.NewRemoteError(common.KindNotFound, "unknown linetype %s", linetype)
	}
	return append([]any{}, fields...), nil
}

func (s *Store) Record(ctx context.Context, token, table, id string) (*client.RecordResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	r, ok := s.records[table][id]
	if !ok {
		return nil, common.NewRemoteError(common.KindNotFound, "no record %s/%s", table, id)
	}
	return &client.RecordResult{
		Content:     append([]byte(nil), r.content...),
		ContentType: r.contentType,
		Filename:    r.filename,
	}, nil
}

func (s *Store) H2N(ctx context.Context, token, hash string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return 0, false, err
	}
	sl, ok := s.byHash[hash]
	if !ok {
		return 0, false, nil
	}
	return sl.n, true, nil
}

func (s *Store) N2H(ctx context.Context, token string, n int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return "", err
	}
	sl, ok := s.byN[n]
	if !ok {
		return "", common.NewRemoteError(common.KindNotFound, "no line with sequence number %d", n)
	}
	return sl.hash, nil
}

func (s *Store) Reports(ctx context.Context, token string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	return sortedKeys(s.reports), nil
}

func (s *Store) Linetypes(ctx context.Context, token, report string) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return nil, err
	}
	if report == "" {
		return sortedKeys(s.linetypes), nil
	}
	rep, ok := s.reports[report]
	if !ok {
		return nil, common.NewRemoteError(common.KindNotFound, "unknown report %s", report)
	}
	out := make([]any, 0, len(rep.Linetypes))
	for _, lt := range rep.Linetypes {
		out = append(out, lt)
	}
	return out, nil
}

func (s *Store) Groups(ctx context.Context, token, report, prefix, minVersion string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.report(token, report, minVersion)
	if err != nil {
		return nil, err
	}
	groups := make([]string, 0, len(rep.Groups))
	for name := range rep.Groups {
		if name != "" && strings.HasPrefix(name, prefix) {
			groups = append(groups, name)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

// Report returns the seeded content of a group, or nil when the report has
// no such group.
func (s *Store) Report(ctx context.Context, token, report, group, minVersion string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.report(token, report, minVersion)
	if err != nil {
		return nil, err
	}
	return rep.Groups[group], nil
}

func (s *Store) report(token, report, minVersion string) (SeedReport, error) {
	if _, err := s.authenticate(token); err != nil {
		return SeedReport{}, err
	}
	if err := s.checkMinVersion(minVersion); err != nil {
		return SeedReport{}, err
	}
	rep, ok := s.reports[report]
	if !ok {
		return SeedReport{}, common.NewRemoteError(common.KindNotFound, "unknown report %s", report)
	}
	return rep, nil
}

func (s *Store) Refresh(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.authenticate(token); err != nil {
		return "", err
	}
	return s.version, nil
}

func lineHash(linetype, id string) string {
	sum := sha256.Sum256([]byte(linetype + "/" + id))
	return hex.EncodeToString(sum[:])
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func cloneLine(l client.Line) client.Line {
	out := make(client.Line, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
