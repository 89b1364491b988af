package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/interaction"
	"github.com/trezcool/darasa/core/perm"
	"github.com/trezcool/darasa/core/session"
)

type interactionApi struct {
	svc        *interaction.Service
	sessionSvc *session.Service
}

func registerInteractionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *interaction.Service,
	sessionSvc *session.Service,
) {
	api := interactionApi{svc: svc, sessionSvc: sessionSvc}

	ig := g.Group("/interactions", jwt)

	ig.GET("", api.query, checkPermission(perm.Read, api.loadObject, api.rule))
	ig.POST("", api.create, checkPermission(perm.Create, api.loadObject, api.rule))

	ig.GET("/:id", api.retrieve, checkPermission(perm.Read, api.loadObject, api.rule))
	ig.PUT("/:id", api.update, checkPermission(perm.Edit, api.loadObject, api.rule))
	ig.DELETE("/:id", api.destroy, checkPermission(perm.Delete, api.loadObject, api.rule))

	// nested collection
	g.GET("/sessions/:id/interactions", api.queryBySession, jwt)
}

func (api *interactionApi) loadObject(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *interactionApi) rule(actor *perm.Actor, action perm.Action, obj interface{}) bool {
	if itr, ok := obj.(interaction.Interaction); ok {
		return perm.CanInteraction(actor, action, itr.AuthorID)
	}
	return perm.CanInteraction(actor, action, 0)
}

// Handlers

func (api *interactionApi) query(ctx echo.Context) error {
	itrs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying interactions")
	}
	if itrs == nil {
		itrs = []interaction.Interaction{}
	}
	return ctx.JSON(http.StatusOK, itrs)
}

func (api *interactionApi) create(ctx echo.Context) error {
	var data interaction.NewInteraction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInteraction")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// the session must exist
	if _, err := api.sessionSvc.GetByID(ctx.Request().Context(), data.SessionID); err != nil {
		return errors.Wrap(err, "finding session by ID")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	itr, err := api.svc.Create(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating interaction")
	}
	return ctx.JSON(http.StatusCreated, itr)
}

func (api *interactionApi) retrieve(ctx echo.Context) error {
	itr, ok := ctx.Get(contextObjectKey).(interaction.Interaction)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, itr)
}

func (api *interactionApi) update(ctx echo.Context) error {
	itr, ok := ctx.Get(contextObjectKey).(interaction.Interaction)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data interaction.UpdateInteraction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInteraction")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	itr, err := api.svc.Update(ctx.Request().Context(), itr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating interaction")
	}
	return ctx.JSON(http.StatusOK, itr)
}

func (api *interactionApi) destroy(ctx echo.Context) error {
	itr, ok := ctx.Get(contextObjectKey).(interaction.Interaction)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), itr.ID); err != nil {
		return errors.Wrap(err, "deleting interaction")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Interaction deleted successfully"})
}

func (api *interactionApi) queryBySession(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err := api.sessionSvc.GetByID(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding session by ID")
	}

	itrs, err := api.svc.QueryBySession(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying interactions by session")
	}
	if itrs == nil {
		itrs = []interaction.Interaction{}
	}
	return ctx.JSON(http.StatusOK, itrs)
}
