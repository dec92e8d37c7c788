package casbinAuthorization

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newTestAuthorizer(t *testing.T) *Authorizer {
	t.Helper()
	enforcer, err := NewEnforcer("../rbac_model.conf", "../policy.csv")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	authorizer, err := NewAuthorizer(secret, enforcer, logger)
	require.NoError(t, err)
	return authorizer
}

func sign(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	require.NoError(t, err)
	token, err := jwt.NewBuilder(signer).Build(claims)
	require.NoError(t, err)
	return token.String()
}

func hostToken(t *testing.T, userType string) string {
	return sign(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "65f1c0ffee0000000000beef",
		UserType:         userType,
	})
}

func serve(t *testing.T, method, path, token string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFrom(r.Context()); ok {
			seen = &identity
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	newTestAuthorizer(t).CasbinMiddleware(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestAnonymousReads(t *testing.T) {
	for _, path := range []string{"/property", "/property/cities/unique", "/property/65f1c0ffee0000000000beef", "/reviews/all", "/health"} {
		rec, identity := serve(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Nil(t, identity)
	}
}

func TestAnonymousWritesForbidden(t *testing.T) {
	rec, _ := serve(t, http.MethodPost, "/property/register", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, http.MethodPost, "/reviews/create", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoles(t *testing.T) {
	tests := []struct {
		role   string
		method string
		path   string
		status int
	}{
		{"Host", http.MethodPost, "/property/register", http.StatusOK},
		{"Host", http.MethodDelete, "/property/delete/65f1c0ffee0000000000beef", http.StatusOK},
		{"Guest", http.MethodPost, "/property/register", http.StatusForbidden},
		{"Guest", http.MethodPost, "/reviews/create", http.StatusOK},
		{"Guest", http.MethodGet, "/property", http.StatusOK},
		{"Host", http.MethodPost, "/reviews/migrate-data", http.StatusForbidden},
		{"Admin", http.MethodPost, "/reviews/migrate-data", http.StatusOK},
		{"Admin", http.MethodPatch, "/property/65f1c0ffee0000000000beef", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			rec, identity := serve(t, tt.method, tt.path, hostToken(t, tt.role))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, identity)
				assert.Equal(t, tt.role, identity.UserType)
				assert.Equal(t, "65f1c0ffee0000000000beef", identity.UserID)
			}
		})
	}
}

func TestRejectedTokens(t *testing.T) {
	expired := sign(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		UserType:         "Host",
	})
	foreign := sign(t, []byte("other-secret"), Claims{UserType: "Host"})
	noRole := sign(t, secret, Claims{UserID: "x"})

	for name, token := range map[string]string{"expired": expired, "foreign": foreign, "no role": noRole, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			rec, _ := serve(t, http.MethodGet, "/property", token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/property", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	newTestAuthorizer(t).CasbinMiddleware(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
