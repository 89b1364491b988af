package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/perm"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/core/topic"
	"github.com/trezcool/darasa/core/user"
)

var errPresenterNotFound = echo.NewHTTPError(http.StatusNotFound, "Presenter not found")

type sessionApi struct {
	svc      *session.Service
	topicSvc *topic.Service
	userSvc  *user.Service
}

func registerSessionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *session.Service,
	topicSvc *topic.Service,
	userSvc *user.Service,
) {
	api := sessionApi{svc: svc, topicSvc: topicSvc, userSvc: userSvc}

	sg := g.Group("/sessions", jwt)

	sg.GET("", api.query, checkPermission(perm.Read, api.loadObject, api.rule))
	sg.POST("", api.create, checkPermission(perm.Create, api.loadObject, api.rule))

	sg.GET("/:id", api.retrieve, checkPermission(perm.Read, api.loadObject, api.rule))
	sg.PUT("/:id", api.update, checkPermission(perm.Edit, api.loadObject, api.rule))
	sg.DELETE("/:id", api.destroy, checkPermission(perm.Delete, api.loadObject, api.rule))

	// nested collection
	g.GET("/topics/:id/sessions", api.queryByTopic, jwt)
}

func (api *sessionApi) loadObject(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *sessionApi) rule(actor *perm.Actor, action perm.Action, obj interface{}) bool {
	if sess, ok := obj.(session.Session); ok {
		return perm.CanSession(actor, action, sess.PresenterID)
	}
	return perm.CanSession(actor, action, 0)
}

// Handlers

func (api *sessionApi) query(ctx echo.Context) error {
	sessions, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// the topic and the presenter must exist
	if _, err := api.topicSvc.GetByID(ctx.Request().Context(), data.TopicID); err != nil {
		return errors.Wrap(err, "finding topic by ID")
	}
	if _, err := api.userSvc.GetByID(ctx.Request().Context(), data.PresenterID); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errPresenterNotFound
		}
		return errors.Wrap(err, "finding presenter by ID")
	}

	sess, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, ok := ctx.Get(contextObjectKey).(session.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) update(ctx echo.Context) error {
	sess, ok := ctx.Get(contextObjectKey).(session.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data session.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, err := api.svc.Update(ctx.Request().Context(), sess.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	sess, ok := ctx.Get(contextObjectKey).(session.Session)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Session deleted successfully"})
}

func (api *sessionApi) queryByTopic(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err := api.topicSvc.GetByID(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding topic by ID")
	}

	sessions, err := api.svc.QueryByTopic(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying sessions by topic")
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}
