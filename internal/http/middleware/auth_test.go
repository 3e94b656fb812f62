package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/swim-records/internal/auth"
)

func identity(uid, role string) auth.Identity { return auth.Identity{UserID: uid, Role: role} }

type fakeVerifier map[string]auth.Identity

func (f fakeVerifier) Verify(raw string) (auth.Identity, error) {
	switch raw {
	case "norole":
		return auth.Identity{}, auth.ErrNoRole
	}
	if id, ok := f[raw]; ok {
		return id, nil
	}
	return auth.Identity{}, errors.New("bad signature")
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), mw)
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id.UserID, "role": id.Role})
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	r := authRouter(Authenticate(fakeVerifier{"good": identity("u-1", "coach")}))

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"valid", "Bearer good", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "unauthorized"},
		{"bad token", "Bearer forged", http.StatusUnauthorized, "unauthorized"},
		{"no role", "Bearer norole", http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d; want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if tc.code == "" {
				if body["user"] != "u-1" || body["role"] != "coach" {
					t.Fatalf("identity = %v", body)
				}
				return
			}
			if body["code"] != tc.code || body["error"] == "" || body["request_id"] == "" {
				t.Fatalf("envelope = %v", body)
			}
		})
	}
}

func TestAuthenticate_RealVerifier(t *testing.T) {
	v := auth.NewVerifier("secret", "")
	tok, err := v.Sign(identity("admin-1", "admin"), time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	authRouter(Authenticate(v)).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
}

func TestDevIdentity(t *testing.T) {
	r := authRouter(DevIdentity())

	do := func(uid, role string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if uid != "" {
			req.Header.Set(HeaderUserID, uid)
		}
		if role != "" {
			req.Header.Set(HeaderUserRole, role)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}
	if got := do("u", " Admin "); got != http.StatusOK {
		t.Fatalf("dev identity = %d", got)
	}
	if got := do("", "admin"); got != http.StatusUnauthorized {
		t.Fatalf("missing user = %d", got)
	}
	if got := do("u", ""); got != http.StatusForbidden {
		t.Fatalf("missing role = %d", got)
	}
}
