package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/perm"
)

type (
	// objectLoader fetches the resource under permission check by ID.
	// It returns the resource's not-found sentinel when absent.
	objectLoader func(ctx echo.Context, id int) (interface{}, error)

	// permRule evaluates the loaded resource against the actor;
	// obj is nil on collection paths.
	permRule func(actor *perm.Actor, action perm.Action, obj interface{}) bool
)

// checkPermission guards a route with the permission evaluator. It requires
// prior JWT auth. On id paths it does exactly one lookup, returning 404 when
// the resource is absent, and stores the loaded resource in the context under
// "object" for the handler; create never loads. Handlers never re-check
// authorization.
func checkPermission(action perm.Action, load objectLoader, rule permRule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx)
			if err != nil {
				return err
			}

			idStr := ctx.Param("id")
			if idStr == "" || action == perm.Create {
				if !rule(actor, action, nil) {
					return errHttpForbidden
				}
				return next(ctx)
			}

			id, err := strconv.Atoi(idStr)
			if err != nil {
				return errHttpNotFound
			}
			obj, err := load(ctx, id)
			if err != nil {
				return errors.Wrap(err, "loading object") // not-found sentinels map to 404
			}
			if !rule(actor, action, obj) {
				return errHttpForbidden
			}

			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx)
			if err != nil {
				return err
			}
			if !actor.IsAdmin() {
				return errAdminRequired
			}
			return next(ctx)
		}
	}
}
