package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
	"github.com/readshelf/readshelf/internal/saga"
	"github.com/readshelf/readshelf/internal/storage"
)

// ResourceHandler serves the resources of a topic: uploads, listings,
// downloads, edits, deletion and the per-user read/rate operations.
type ResourceHandler struct {
	Cfg      config.Config
	Topics   *repository.TopicRepo
	Subs     *repository.SubscriptionRepo
	Res      *repository.ResourceRepo
	Readings *repository.ReadingItemRepo
	Ratings  *repository.RatingRepo
	Docs     *storage.DocumentStore
}

// requireSubscription reports whether the user is subscribed to the
// topic. When they are not (or the lookup fails) it writes the response
// and returns ok=false; callers must stop and return the error as-is. The
// ok flag carries the decision because a successfully written 403 is a
// nil error.
func (h *ResourceHandler) requireSubscription(c echo.Context, ctx context.Context, topicID, userID uint64, action string) (bool, error) {
	if _, err := h.Subs.Get(ctx, topicID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, c.JSON(http.StatusForbidden, echo.Map{"error": "you must be subscribed to " + action})
		}
		return false, internalError(c, h.Cfg.IsDev(), "subscription check failed", err)
	}
	return true, nil
}

// validAbsoluteURL accepts http(s) URLs with a host.
func validAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Add creates a LINK or DOCUMENT resource under a topic from a multipart
// form. For documents the blob is validated and fully on disk before the
// row insert; a failed insert removes the blob again.
func (h *ResourceHandler) Add(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	topicID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.requireSubscription(c, ctx, topicID, u.ID, "add resources"); !ok {
		return err
	}

	description := strings.TrimSpace(c.FormValue("description"))
	if description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description is required"})
	}
	rtype := strings.ToUpper(strings.TrimSpace(c.FormValue("type")))
	if !model.ValidResourceType(rtype) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be LINK or DOCUMENT"})
	}

	var resourceID uint64
	switch rtype {
	case model.ResourceLink:
		link := strings.TrimSpace(c.FormValue("url"))
		if link == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "url is required for link resources"})
		}
		if !validAbsoluteURL(link) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid URL format"})
		}
		resourceID, err = h.Res.CreateLink(ctx, topicID, u.ID, description, link)
		if err != nil {
			return internalError(c, h.Cfg.IsDev(), "add resource failed", err)
		}

	case model.ResourceDocument:
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required for document resources"})
		}
		path, err := h.Docs.Save(fh)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrFileTooLarge):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large, maximum size is 10MB"})
			case errors.Is(err, storage.ErrInvalidFileType):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid file type, only documents are allowed"})
			}
			return internalError(c, h.Cfg.IsDev(), "store file failed", err)
		}
		resourceID, err = h.Res.CreateDocument(ctx, topicID, u.ID, description, path)
		if err != nil {
			// Do not leave an orphaned blob behind a failed insert.
			_ = h.Docs.Remove(path)
			return internalError(c, h.Cfg.IsDev(), "add resource failed", err)
		}
	}

	res, err := h.Res.GetAnnotated(ctx, resourceID, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "add resource failed", err)
	}
	shapeResource(&res)
	return c.JSON(http.StatusCreated, echo.Map{"message": "resource added", "resource": res})
}

// List returns a topic's resources newest first, annotated for the caller.
func (h *ResourceHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	topicID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if ok, err := h.requireSubscription(c, ctx, topicID, u.ID, "view resources"); !ok {
		return err
	}

	page, limit := pageParams(c)
	rows, total, err := h.Res.ListByTopic(ctx, topicID, u.ID, page, limit)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "list resources failed", err)
	}
	for i := range rows {
		shapeResource(&rows[i])
	}
	return c.JSON(http.StatusOK, echo.Map{
		"resources":    rows,
		"total":        total,
		"total_pages":  totalPages(total, limit),
		"current_page": page,
	})
}

// GetOne returns one resource with the caller's annotations.
func (h *ResourceHandler) GetOne(c echo.Context) error {
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

	res, err := h.Res.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "get resource failed", err)
	}
	if ok, err := h.requireSubscription(c, ctx, res.TopicID, u.ID, "view this resource"); !ok {
		return err
	}

	annotated, err := h.Res.GetAnnotated(ctx, id, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "get resource failed", err)
	}
	shapeResource(&annotated)

	t, err := h.Topics.GetByID(ctx, res.TopicID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "get resource failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"resource": annotated,
		"topic":    echo.Map{"id": t.ID, "name": t.Name, "visibility": t.Visibility},
	})
}

type updateResourceRequest struct {
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

// Update edits a resource's description and, for LINK rows, its url. Only
// the creator may edit; admins get delete rights, not edit rights.
func (h *ResourceHandler) Update(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req updateResourceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Description == nil && req.URL == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description cannot be empty"})
	}
	if req.URL != nil && !validAbsoluteURL(*req.URL) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid URL format"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Res.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "update resource failed", err)
	}
	if res.CreatorID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only update your own resources"})
	}
	if req.URL != nil && res.Type != model.ResourceLink {
		// The url column stays untouched on DOCUMENT rows; drop the field
		// rather than failing a request that also carries a description.
		req.URL = nil
		if req.Description == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "url can only be set on link resources"})
		}
	}

	if err := h.Res.Update(ctx, id, req.Description, req.URL); err != nil {
		return internalError(c, h.Cfg.IsDev(), "update resource failed", err)
	}

	annotated, err := h.Res.GetAnnotated(ctx, id, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "update resource failed", err)
	}
	shapeResource(&annotated)
	return c.JSON(http.StatusOK, echo.Map{"message": "resource updated", "resource": annotated})
}

// Delete removes a resource, its blob and its per-user rows. Creator or
// admin only. Children go first so an interrupted cascade never leaves
// rows pointing at a missing resource.
func (h *ResourceHandler) Delete(c echo.Context) error {
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

	res, err := h.Res.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "delete resource failed", err)
	}
	if res.CreatorID != u.ID && !u.IsAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the creator or an admin can delete this resource"})
	}

	flow := saga.New("delete-resource",
		saga.Step{
			Name: "remove-blob",
			Apply: func(ctx context.Context) error {
				if res.Type != model.ResourceDocument || res.FilePath == nil {
					return nil
				}
				return h.Docs.Remove(*res.FilePath)
			},
		},
		saga.Step{
			Name: "delete-reading-items",
			Apply: func(ctx context.Context) error {
				_, err := h.Readings.DeleteByResource(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-ratings",
			Apply: func(ctx context.Context) error {
				_, err := h.Ratings.DeleteByResource(ctx, id)
				return err
			},
		},
		saga.Step{
			Name: "delete-resource-row",
			Apply: func(ctx context.Context) error {
				return h.Res.Delete(ctx, id)
			},
		},
	)
	if err := flow.Run(ctx); err != nil {
		return internalError(c, h.Cfg.IsDev(), "delete resource failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "resource deleted"})
}
