package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	errTokenExpired       = echo.NewHTTPError(http.StatusUnauthorized, "token expired")
	errTokenInvalid       = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	errAccountDeactivated = echo.NewHTTPError(http.StatusUnauthorized, "account deactivated")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests    = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps our errors
// onto the response envelope. signalShutdown is called in order to gracefully
// shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string
		var fields interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = errUnauthorized.Message.(string)
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprintf("%v", origErr.Message)
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusUnprocessableEntity
			message = "validation failed"
			fields = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			if fldErrs := origErr.FieldMap(); fldErrs != nil {
				message = "validation failed"
				fields = fldErrs
			} else {
				message = origErr.Error()
			}
		default:
			switch origErr {
			case user.ErrNotFound, course.ErrNotFound, assignment.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case user.ErrInvalidCredentials, user.ErrUserInactive:
				code = http.StatusUnauthorized
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(http.StatusInternalServerError)

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.UserID
					usr.Username = claims.Username
				}
				logger.Error(message, errors.Wrap(err, message), usr)

				// shutting down...
				if core.IsShutdown(origErr) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, Response{Success: false, Message: message, Errors: fields})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
