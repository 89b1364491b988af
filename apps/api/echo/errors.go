package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
	"github.com/trezcool/darasa/core/user"
)

var (
	errUnauthorized        = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	errInvalidCredentials  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errInvalidRefreshToken = echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	errInvalidGoogleToken  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid Google token")
	errHttpForbidden       = echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	errAdminRequired       = echo.NewHTTPError(http.StatusForbidden, "Admin access required")
	errHttpNotFound        = echo.NewHTTPError(http.StatusNotFound, "Not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *user.ContentError:
			// user deletion blocked: per-type counts help the admin clean up
			code = http.StatusBadRequest
			message = echo.Map{"error": origErr.Error(), "details": origErr.Counts}
		default:
			switch errors.Cause(err) {
			case user.ErrNotFound, topic.ErrNotFound, session.ErrNotFound, interaction.ErrNotFound:
				code = http.StatusNotFound
				message = errors.Cause(err).Error()
			case topic.ErrNotMember:
				code = http.StatusNotFound
				message = topic.ErrNotMember.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.UserID()
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		} else if m, ok := message.(map[string]string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
