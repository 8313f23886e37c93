package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydocs/relaygw/internal/auth/jwt"
	"github.com/relaydocs/relaygw/internal/lockout"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	router    *gin.Engine
	client    *fakeClient
	tracker   *lockout.Tracker
	validator *jwt.Validator
}

func newAuthFixture(t *testing.T, threshold int) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := jwt.NewSigner(testSecret)
	require.NoError(t, err)
	validator, err := jwt.NewValidator(testSecret)
	require.NoError(t, err)

	client := newFakeClient()
	tracker := lockout.NewTracker(nil, nil, lockout.Config{
		Threshold: threshold,
		Window:    time.Minute,
		Duration:  time.Minute,
	})

	router := gin.New()
	NewAuthHandler(client, signer, tracker, nil, nil).Register(router.Group("/api/v1/auth"))

	return &authFixture{router: router, client: client, tracker: tracker, validator: validator}
}

func (f *authFixture) post(path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.5:4000"

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func creds(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}

func TestSignup(t *testing.T) {
	f := newAuthFixture(t, 5)

	w := f.post("/api/v1/auth/signup", creds("bob", "long-password"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "id-bob", resp.UserID)

	claims, err := f.validator.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "id-bob", claims.Subject)

	w = f.post("/api/v1/auth/signup", creds("bob", "long-password"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"Username already exists"}`, w.Body.String())
}

func TestSignup_Validation(t *testing.T) {
	f := newAuthFixture(t, 5)

	w := f.post("/api/v1/auth/signup", creds("ab", "short"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, MessageInvalidRequest, body.Message)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "username", body.Errors[0].Field)
	assert.Equal(t, "min", body.Errors[0].Rule)
	assert.Equal(t, "password", body.Errors[1].Field)
	assert.Empty(t, f.client.calls)
}

func TestSignup_MalformedBody(t *testing.T) {
	f := newAuthFixture(t, 5)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), MessageInvalidRequest)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t, 5)

	w := f.post("/api/v1/auth/login", creds("alice", "correct-horse"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "id-alice", resp.UserID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPasswordPassesThrough(t *testing.T) {
	f := newAuthFixture(t, 5)

	w := f.post("/api/v1/auth/login", creds("alice", "wrong-password"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())
}

func TestLogin_LocksAfterThreshold(t *testing.T) {
	f := newAuthFixture(t, 3)

	for i := 0; i < 2; i++ {
		w := f.post("/api/v1/auth/login", creds("alice", "wrong-password"))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// the threshold failure answers with the lock
	w := f.post("/api/v1/auth/login", creds("Alice", "wrong-password"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Account temporarily locked. Try again later."}`, w.Body.String())

	// correct password is refused while locked, without calling downstream
	calls := len(f.client.calls)
	w = f.post("/api/v1/auth/login", creds("alice", "correct-horse"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Len(t, f.client.calls, calls)
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	f := newAuthFixture(t, 3)

	for i := 0; i < 2; i++ {
		f.post("/api/v1/auth/login", creds("alice", "wrong-password"))
	}
	require.Equal(t, http.StatusOK, f.post("/api/v1/auth/login", creds("alice", "correct-horse")).Code)

	// counting restarts from zero
	for i := 0; i < 2; i++ {
		w := f.post("/api/v1/auth/login", creds("alice", "wrong-password"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestLogin_DownstreamFailure(t *testing.T) {
	f := newAuthFixture(t, 1)
	f.client.err = &downstream503

	w := f.post("/api/v1/auth/login", creds("alice", "correct-horse"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"message":"Upstream service failure"}`, w.Body.String())
}
