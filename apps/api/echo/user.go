package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/perm"
	"github.com/trezcool/darasa/core/user"
)

var errObjNotFoundInCtx = errors.New("object not found in echo.Context")

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users", jwt)

	// any authenticated user
	ug.GET("/names", api.queryNames)

	// admin only
	ug.GET("", api.query, adminMiddleware())
	ug.POST("", api.create, adminMiddleware())

	ug.PUT("/:id", api.update, checkPermission(perm.Edit, api.loadObject, api.editRule))
	ug.DELETE("/:id", api.destroy, adminMiddleware())
}

// loadObject fetches the target user for the permission middleware.
func (api *userApi) loadObject(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

// editRule: admins may edit anyone; other users only themselves.
func (api *userApi) editRule(actor *perm.Actor, _ perm.Action, obj interface{}) bool {
	if actor.IsAdmin() {
		return true
	}
	usr, ok := obj.(user.User)
	return ok && usr.ID == actor.ID
}

// Handlers

func (api *userApi) queryNames(ctx echo.Context) error {
	names, err := api.svc.QueryNames(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying user names")
	}
	if names == nil {
		names = []user.Name{}
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *userApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.AdminNewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminNewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, tmpPwd, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, NewUserResponse{User: usr, TemporaryPassword: tmpPwd})
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	// role changes are admin-only; self-editors keep their current role
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && data.Role != "" && data.Role != usr.Role {
		return errHttpForbidden
	}

	if err := data.Validate(usr, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id, actor.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

type NewUserResponse struct {
	user.User
	TemporaryPassword string `json:"temporaryPassword"`
}
