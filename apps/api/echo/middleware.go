package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/trezcool/darasa/core/user"
)

// activeUserMiddleware resolves the authenticated user from the token claims
// and rejects missing or deactivated accounts. Deactivation takes effect
// immediately, even for tokens issued before it.
func activeUserMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "finding user by ID")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// roleMiddleware only lets through users holding one of the given roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// requestIDMiddleware tags every request with a generated X-Request-ID,
// keeping an inbound one when the client sent it.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rid := ctx.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.New().String()
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(ctx)
		}
	}
}

// rateLimitMiddleware enforces the given rates per client IP,
// backed by an in-memory store.
func rateLimitMiddleware(rates ...limiter.Rate) echo.MiddlewareFunc {
	limiters := make([]*limiter.Limiter, 0, len(rates))
	for _, rate := range rates {
		limiters = append(limiters, limiter.New(memory.NewStore(), rate))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ip := ctx.RealIP()
			for _, lim := range limiters {
				lctx, err := lim.Get(ctx.Request().Context(), ip)
				if err != nil {
					return errors.Wrap(err, "checking rate limit")
				}
				if lctx.Reached {
					return errTooManyRequests
				}
			}
			return next(ctx)
		}
	}
}
