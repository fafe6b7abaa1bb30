package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	authContextKey   = "userToken"
	contextUserKey   = "user"
	contextObjectKey = "object"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// newJWTConfig is the JWT auth middleware config; tokens are verified with
// the configured signing method and secret, never trusting unverified claims.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: conf.Server.JWTAlgorithm,
		ContextKey:    authContextKey,
		Claims:        new(Claims),
		ErrorHandler:  jwtErrorHandler,
	}
}

// jwtErrorHandler keeps expired and malformed/tampered tokens distinguishable.
func jwtErrorHandler(err error) error {
	if err == middleware.ErrJWTMissing {
		return errUnauthorized
	}
	if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
		return errTokenExpired
	}
	return errTokenInvalid
}

// GetUserClaims builds the Claims issued for usr at login.
func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:   usr.ID,
		Username: usr.Username,
		Role:     usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(conf.Server.JWTAlgorithm)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies the token's signature and expiry and returns its Claims.
func ParseToken(ss string, conf *core.Config) (*Claims, error) {
	token, err := jwt.ParseWithClaims(ss, new(Claims), func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != conf.Server.JWTAlgorithm {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errTokenExpired
		}
		return nil, errTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errTokenInvalid
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(authContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser returns the active user set by activeUserMiddleware.
func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
