package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
	"github.com/readshelf/readshelf/internal/saga"
	"github.com/readshelf/readshelf/internal/storage"
)

// TopicHandler serves topic CRUD, browsing, subscriptions and invites. The
// delete cascade touches every dependent store, so the handler holds all
// of them.
type TopicHandler struct {
	Cfg      config.Config
	Topics   *repository.TopicRepo
	Subs     *repository.SubscriptionRepo
	Invites  *repository.InviteRepo
	Res      *repository.ResourceRepo
	Readings *repository.ReadingItemRepo
	Ratings  *repository.RatingRepo
	Users    *repository.UserRepo
	Docs     *storage.DocumentStore
	Cache    *redis.Client // nil when Redis is unavailable
}

type createTopicRequest struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

type topicView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	OwnerID    uint64 `json:"owner_id"`
	Visibility string `json:"visibility"`
}

func viewTopic(t *model.Topic) topicView {
	return topicView{ID: t.ID, Name: t.Name, OwnerID: t.OwnerID, Visibility: t.Visibility}
}

// Create makes a topic and its implicit owner subscription. The two writes
// run as a saga: if the subscription insert fails, the topic is removed
// again rather than left without an owner membership.
func (h *TopicHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createTopicRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "topic name is required"})
	}
	if req.Visibility == "" {
		req.Visibility = model.VisibilityPublic
	}
	if !model.ValidVisibility(req.Visibility) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be PUBLIC or PRIVATE"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var topicID uint64
	flow := saga.New("create-topic",
		saga.Step{
			Name: "insert-topic",
			Apply: func(ctx context.Context) error {
				id, err := h.Topics.Create(ctx, req.Name, u.ID, req.Visibility)
				if err != nil {
					return err
				}
				topicID = id
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return h.Topics.Delete(ctx, topicID)
			},
		},
		saga.Step{
			Name: "owner-subscription",
			Apply: func(ctx context.Context) error {
				_, err := h.Subs.Create(ctx, topicID, u.ID, model.SeriousnessVerySerious)
				return err
			},
		},
	)
	if err := flow.Run(ctx); err != nil {
		if errors.Is(err, repository.ErrTopicExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a topic with this name"})
		}
		return internalError(c, h.Cfg.IsDev(), "create topic failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"topic": topicView{ID: topicID, Name: req.Name, OwnerID: u.ID, Visibility: req.Visibility},
	})
}

// Details returns one topic with its subscriber count and the caller's own
// subscription, if any. PRIVATE topics are visible to subscribers only.
func (h *TopicHandler) Details(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "get topic failed", err)
	}

	sub, subErr := h.Subs.Get(ctx, id, u.ID)
	if subErr != nil && !errors.Is(subErr, sql.ErrNoRows) {
		return internalError(c, h.Cfg.IsDev(), "get topic failed", subErr)
	}
	subscribed := subErr == nil

	if t.Visibility == model.VisibilityPrivate && !subscribed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "this topic is private"})
	}

	count, err := h.Subs.CountByTopic(ctx, id)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "get topic failed", err)
	}

	var subView any
	if subscribed {
		subView = echo.Map{"seriousness": sub.Seriousness, "subscribed_at": sub.CreatedAt}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"topic":            viewTopic(&t),
		"subscriber_count": count,
		"subscription":     subView,
	})
}

// MyTopics lists the caller's subscriptions with topic and owner attached.
func (h *TopicHandler) MyTopics(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Subs.ListByUser(ctx, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "list topics failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"topics": rows})
}

// Delete removes a topic and everything under it. The cascade is a saga of
// uncompensated steps ordered children first, so an interrupted run never
// leaves rows pointing at a deleted topic; it leaves a topic with fewer
// children, which a retry finishes off.
func (h *TopicHandler) Delete(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "delete topic failed", err)
	}
	if t.OwnerID != u.ID && !u.IsAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner or an admin can delete this topic"})
	}

	var deletedResources int64
	flow := saga.New("delete-topic",
		saga.Step{
			Name: "remove-document-blobs",
			Apply: func(ctx context.Context) error {
				paths, err := h.Res.DocumentPathsByTopic(ctx, id)
				if err != nil {
					return err
				}
				for _, p := range paths {
					if err := h.Docs.Remove(p); err != nil {
						return err
					}
				}
				return nil
			},
		},
		saga.Step{
			Name: "delete-reading-items",
			Apply: func(ctx context.Context) error {
				_, err := h.Readings.DeleteByTopic(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-ratings",
			Apply: func(ctx context.Context) error {
				_, err := h.Ratings.DeleteByTopic(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-resources",
			Apply: func(ctx context.Context) error {
				n, err := h.Res.DeleteByTopic(ctx, id)
				if err != nil {
					return err
				}
				deletedResources = n
				return nil
			},
		},
		saga.Step{
			Name: "delete-invites",
			Apply: func(ctx context.Context) error {
				_, err := h.Invites.DeleteByTopic(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-subscriptions",
			Apply: func(ctx context.Context) error {
				_, err := h.Subs.DeleteByTopic(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-topic-row",
			Apply: func(ctx context.Context) error {
				return h.Topics.Delete(ctx, id)
			},
		},
	)
	if err := flow.Run(ctx); err != nil {
		return internalError(c, h.Cfg.IsDev(), "delete topic failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":           "topic deleted",
		"deleted_resources": deletedResources,
	})
}
