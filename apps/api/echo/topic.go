package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/perm"
	"github.com/trezcool/darasa/core/topic"
)

type topicApi struct {
	svc *topic.Service
}

func registerTopicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *topic.Service) {
	api := topicApi{svc: svc}

	tg := g.Group("/topics", jwt)

	tg.GET("", api.query, checkPermission(perm.Read, api.loadObject, api.rule))
	tg.POST("", api.create, checkPermission(perm.Create, api.loadObject, api.rule))

	tg.GET("/:id", api.retrieve, checkPermission(perm.Read, api.loadObject, api.rule))
	tg.PUT("/:id", api.update, checkPermission(perm.Edit, api.loadObject, api.rule))
	tg.DELETE("/:id", api.destroy, checkPermission(perm.Delete, api.loadObject, api.rule))

	// membership
	tg.POST("/:id/join", api.join)
	tg.DELETE("/:id/leave", api.leave)
}

func (api *topicApi) loadObject(ctx echo.Context, id int) (interface{}, error) {
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *topicApi) rule(actor *perm.Actor, action perm.Action, obj interface{}) bool {
	if tpc, ok := obj.(topic.Topic); ok {
		return perm.Can(actor, action, &tpc)
	}
	return perm.Can(actor, action, nil)
}

// Handlers

func (api *topicApi) query(ctx echo.Context) error {
	topics, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	if topics == nil {
		topics = []topic.Topic{}
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *topicApi) create(ctx echo.Context) error {
	var data topic.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	tpc, err := api.svc.Create(ctx.Request().Context(), data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, tpc)
}

func (api *topicApi) retrieve(ctx echo.Context) error {
	tpc, ok := ctx.Get(contextObjectKey).(topic.Topic)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) update(ctx echo.Context) error {
	tpc, ok := ctx.Get(contextObjectKey).(topic.Topic)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data topic.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tpc, err := api.svc.Update(ctx.Request().Context(), tpc.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) destroy(ctx echo.Context) error {
	tpc, ok := ctx.Get(contextObjectKey).(topic.Topic)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), tpc.ID); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Topic deleted successfully"})
}

func (api *topicApi) join(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Join(ctx.Request().Context(), id, actor.ID); err != nil {
		return errors.Wrap(err, "joining topic")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Successfully joined topic"})
}

func (api *topicApi) leave(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Leave(ctx.Request().Context(), id, actor.ID); err != nil {
		return errors.Wrap(err, "leaving topic")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Successfully left topic"})
}
