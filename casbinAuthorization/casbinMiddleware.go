package casbinAuthorization

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/casbin/casbin"
	"github.com/cristalhq/jwt/v4"
	"github.com/sirupsen/logrus"
)

const Unauthenticated = "Unauthenticated"

// Claims are issued by the auth service.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	UserType string `json:"userType"`
}

type Identity struct {
	UserID   string
	UserType string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns false for anonymous requests.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || identity.UserType == Unauthenticated {
		return Identity{}, false
	}
	return identity, true
}

type Authorizer struct {
	verifier jwt.Verifier
	enforcer *casbin.Enforcer
	logger   *logrus.Logger
}

func NewAuthorizer(secret []byte, enforcer *casbin.Enforcer, logger *logrus.Logger) (*Authorizer, error) {
	verifier, err := jwt.NewVerifierHS(jwt.HS256, secret)
	if err != nil {
		return nil, err
	}
	return &Authorizer{
		verifier: verifier,
		enforcer: enforcer,
		logger:   logger,
	}, nil
}

func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcerSafe(modelPath, policyPath)
}

func (a *Authorizer) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse([]byte(tokenString), a.verifier)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := token.DecodeClaims(&claims); err != nil {
		return nil, err
	}
	if !claims.IsValidAt(time.Now()) {
		return nil, errors.New("token expired")
	}
	if claims.UserType == "" {
		return nil, errors.New("userType claim not found in token")
	}
	return &claims, nil
}

func (a *Authorizer) extractIdentity(r *http.Request) (Identity, error) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return Identity{UserType: Unauthenticated}, nil
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 {
		return Identity{}, errors.New("invalid token format")
	}

	claims, err := a.parseToken(bearerToken[1])
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, UserType: claims.UserType}, nil
}

func (a *Authorizer) CasbinMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.extractIdentity(r)
		if err != nil {
			a.logger.WithError(err).Debug("rejecting bearer token")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := a.enforcer.EnforceSafe(identity.UserType, r.URL.Path, r.Method)
		if err != nil {
			a.logger.WithError(err).Error("enforce error")
			http.Error(w, "unauthorized user", http.StatusUnauthorized)
			return
		}
		if !res {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
