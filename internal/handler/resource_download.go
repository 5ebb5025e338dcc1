package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/model"
)

// Download streams a DOCUMENT resource's blob as an attachment. The row
// can outlive its blob (removed out-of-band); that case is NotFound, not
// Internal, because the client asked for something that is genuinely gone.
func (h *ResourceHandler) Download(c echo.Context) error {
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
		return internalError(c, h.Cfg.IsDev(), "download failed", err)
	}
	if res.Type != model.ResourceDocument {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "this resource is not a document"})
	}
	if ok, err := h.requireSubscription(c, ctx, res.TopicID, u.ID, "download this resource"); !ok {
		return err
	}

	if res.FilePath == nil || !h.Docs.Exists(*res.FilePath) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found on server"})
	}
	return c.Attachment(*res.FilePath, filepath.Base(*res.FilePath))
}
