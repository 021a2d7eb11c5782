package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/database/dbtest"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sentMail struct {
	To, Subject, Body string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{to, subject, body})
	return nil
}

// fakeProvider accepts any webhook signed "good" whose body is a
// payment.Event in JSON.
type fakeProvider struct {
	mu         sync.Mutex
	amounts    []int64
	metadata   []map[string]string
	createErr  error
	webhookErr error
}

func (f *fakeProvider) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.amounts = append(f.amounts, amount)
	f.metadata = append(f.metadata, metadata)
	id := fmt.Sprintf("pi_test_%d", len(f.amounts))
	return &payment.Intent{ID: id, ClientSecret: id + "_secret", Amount: amount, Currency: currency}, nil
}

func (f *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if f.webhookErr != nil {
		return nil, f.webhookErr
	}
	if signature != "good" {
		return nil, fmt.Errorf("%w: bad signature", payment.ErrInvalidSignature)
	}
	var ev payment.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

type testServer struct {
	t        *testing.T
	mediaDir string
	router   *gin.Engine
	store    *store.Store
	tokens   *auth.TokenManager
	mail     *recordingSender
	pay      *fakeProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.New(dbtest.Open(t))
	ts := &testServer{
		t:        t,
		mediaDir: t.TempDir(),
		store:    st,
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
		mail:     &recordingSender{},
		pay:      &fakeProvider{},
	}
	h := &handlers.Handlers{
		Store:    st,
		Tokens:   ts.tokens,
		Media:    media.LocalStorage{Dir: ts.mediaDir, BaseURL: "http://shop.test"},
		Mailer:   ts.mail,
		Payments: ts.pay,
		Pricing:  pricing.DefaultPolicy(),
		Pages:    handlers.PageConfig{Default: 12, Max: 48},
		Currency: "usd",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	ts.router = routes.SetupRouter(h, routes.Options{CORSOrigins: []string{"http://localhost:5173"}})
	return ts
}

// user creates an account and returns its id and a bearer token.
func (ts *testServer) user(email string, staff bool) (int64, string) {
	ts.t.Helper()
	u, err := ts.store.CreateUser(context.Background(), models.User{Email: email, PasswordHash: "x"})
	require.NoError(ts.t, err)
	if staff {
		_, err = ts.store.DB.Exec("UPDATE users SET is_staff = ? WHERE id = ?", true, u.ID)
		require.NoError(ts.t, err)
	}
	token, err := ts.tokens.GenerateToken(u.ID)
	require.NoError(ts.t, err)
	return u.ID, token
}

// storedFiles counts the uploads kept under folder.
func (ts *testServer) storedFiles(folder string) int {
	ts.t.Helper()
	entries, err := os.ReadDir(filepath.Join(ts.mediaDir, folder))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(ts.t, err)
	return len(entries)
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.send(req, token)
}

func (ts *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type formFile struct {
	Field, Name string
	Content     []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = fw.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorResponse struct {
	Code   string            `json:"code"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

var errMailDown = errors.New("smtp: connection refused")

var pngBytes = []byte("\x89PNG\r\n\x1a\n")
