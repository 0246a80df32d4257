package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seasonal-cms/internal/core/auth"
	"seasonal-cms/internal/core/mail"
	"seasonal-cms/internal/domain"
	"seasonal-cms/internal/feature/content"
	"seasonal-cms/internal/feature/settings"
	"seasonal-cms/internal/feature/user"
)

func init() { gin.SetMode(gin.TestMode) }

// ---------- 内存仓储 ----------

type memContent struct {
	mu   sync.Mutex
	rows []domain.Content
}

func (m *memContent) List(context.Context) ([]domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Content, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memContent) FindByID(_ context.Context, id string) (*domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContent) FindByKey(_ context.Context, key string) (*domain.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Key == key {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContent) Insert(_ context.Context, c *domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Key == c.Key {
			return fmt.Errorf("UNIQUE constraint failed: contents.key")
		}
	}
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memContent) Update(_ context.Context, c *domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == c.ID {
			m.rows[i] = *c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memContent) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memContent) ReplaceAll(_ context.Context, rows []domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]domain.Content(nil), rows...)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]*domain.User{}} }

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memUsers) Insert(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	c := *u
	m.rows[u.ID] = &c
	return nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *u
	m.rows[u.ID] = &c
	return nil
}

func (m *memUsers) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "is_master":
			u.IsMaster = v.(bool)
		}
	}
	return nil
}

func (m *memUsers) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memUsers) CountMasters(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.rows {
		if u.IsMaster {
			n++
		}
	}
	return n, nil
}

type memResets struct {
	mu   sync.Mutex
	rows map[string]*domain.PasswordResetToken
}

func newMemResets() *memResets {
	return &memResets{rows: map[string]*domain.PasswordResetToken{}}
}

func (m *memResets) ClearForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.rows {
		if t.UserID == userID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *memResets) Insert(_ context.Context, t *domain.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.rows[t.ID] = &c
	return nil
}

func (m *memResets) FindByToken(_ context.Context, token string) (*domain.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memResets) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memEmailChanges struct {
	mu   sync.Mutex
	rows map[string]*domain.EmailChangeRequest
}

func newMemEmailChanges() *memEmailChanges {
	return &memEmailChanges{rows: map[string]*domain.EmailChangeRequest{}}
}

func (m *memEmailChanges) Insert(_ context.Context, r *domain.EmailChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *r
	m.rows[r.ID] = &c
	return nil
}

func (m *memEmailChanges) FindByToken(_ context.Context, token string) (*domain.EmailChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Token == token {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memEmailChanges) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

// captureMail 不发真邮件，只记下来给断言用
type captureMail struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (s *captureMail) Send(_ context.Context, m mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return nil
}

func (s *captureMail) last() (mail.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return mail.Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}

// ---------- 测试装配 ----------

type env struct {
	deps    *Deps
	content *content.Service
	users   *user.Service
	mail    *captureMail
}

func newEnv() *env {
	log := zap.NewNop()
	c := content.NewService(&memContent{}, log)
	u := user.NewService(newMemUsers(), newMemResets(), newMemEmailChanges(), log)
	sender := &captureMail{}
	d := &Deps{
		JWT:           &auth.JWTer{Secret: []byte("test-secret"), Issuer: "seasonal-cms", TTL: time.Hour},
		Content:       c,
		Users:         u,
		Settings:      settings.NewService(settings.NewContentFallback(c)),
		Mail:          sender,
		PublicBaseURL: "http://localhost:5173",
	}
	return &env{deps: d, content: c, users: u, mail: sender}
}

// envelope 统一响应包 {code,msg,data}
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var e envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), "body: %s", w.Body.String())
	}
	return w.Code, e
}

func decodeData(t *testing.T, e envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, out), "data: %s", string(e.Data))
}
