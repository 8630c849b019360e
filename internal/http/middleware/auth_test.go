// README: Tests for Firebase auth middleware, admin gate, logging and recovery.
package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"carrental/internal/http/middleware"
	"carrental/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

type stubAdmins struct {
	listed map[string]bool
	err    error
	calls  int
}

func (s *stubAdmins) IsAdmin(_ context.Context, uid string) (bool, error) {
	s.calls++
	return s.listed[uid], s.err
}

func newTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		uid := middleware.CallerUID(c)
		role := middleware.CallerRole(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "role": role, "email": middleware.CallerEmail(c)})
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "user1"}})
	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "user1"}})
	if w := get(r, "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_EmptyBearer(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "user1"}})
	if w := get(r, "Bearer   "); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_VerifierError(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("bad token")})
	if w := get(r, "Bearer invalidtoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidToken_ClaimsPopulated(t *testing.T) {
	token := &infra.FirebaseToken{
		UID:    "admin123",
		Claims: map[string]interface{}{"role": "admin", "email": "ops@example.com"},
	}
	r := newTestRouter(&stubVerifier{token: token})
	w := get(r, "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"admin123", `"role":"admin"`, "ops@example.com"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in body, got %s", want, body)
		}
	}
}

func TestAuth_ValidToken_NoRoleClaim(t *testing.T) {
	token := &infra.FirebaseToken{
		UID:    "renter456",
		Claims: map[string]interface{}{},
	}
	r := newTestRouter(&stubVerifier{token: token})
	w := get(r, "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "renter456") {
		t.Errorf("expected uid renter456 in body")
	}
}

func newAdminRouter(token *infra.FirebaseToken, admins middleware.AdminChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(&stubVerifier{token: token}), middleware.RequireAdmin(admins))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		token  *infra.FirebaseToken
		admins *stubAdmins
		want   int
	}{
		{
			name:   "role claim",
			token:  &infra.FirebaseToken{UID: "a", Claims: map[string]interface{}{"role": "admin"}},
			admins: &stubAdmins{},
			want:   http.StatusNoContent,
		},
		{
			name:   "listed in admin table",
			token:  &infra.FirebaseToken{UID: "b", Claims: map[string]interface{}{}},
			admins: &stubAdmins{listed: map[string]bool{"b": true}},
			want:   http.StatusNoContent,
		},
		{
			name:   "ordinary renter",
			token:  &infra.FirebaseToken{UID: "c", Claims: map[string]interface{}{}},
			admins: &stubAdmins{},
			want:   http.StatusForbidden,
		},
		{
			name:   "lookup failure",
			token:  &infra.FirebaseToken{UID: "d", Claims: map[string]interface{}{}},
			admins: &stubAdmins{err: errors.New("db down")},
			want:   http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newAdminRouter(tt.token, tt.admins), "Bearer ok")
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequireAdmin_RoleClaimSkipsLookup(t *testing.T) {
	admins := &stubAdmins{}
	token := &infra.FirebaseToken{UID: "a", Claims: map[string]interface{}{"role": "admin"}}
	get(newAdminRouter(token, admins), "Bearer ok")
	if admins.calls != 0 {
		t.Errorf("expected no admin lookup, got %d", admins.calls)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.GET("/test", func(c *gin.Context) { panic("boom") })

	w := get(r, "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
		t.Errorf("expected panic to be logged at error level")
	}
}

func TestLogging(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(middleware.Logging(log))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	get(r, "")
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Data["route"] != "/test" || entry.Data["status"] != http.StatusTeapot {
		t.Errorf("unexpected fields: %v", entry.Data)
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level for 4xx, got %s", entry.Level)
	}
}

type recordingObserver struct {
	route  string
	status int
}

func (o *recordingObserver) ObserveRequest(_ string, route string, status int, _ time.Duration) {
	o.route, o.status = route, status
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(middleware.Metrics(obs))
	r.GET("/cars/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/cars/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if obs.route != "/cars/:id" || obs.status != http.StatusOK {
		t.Errorf("unexpected observation %+v", obs)
	}
}
