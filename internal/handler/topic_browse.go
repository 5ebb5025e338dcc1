package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/repository"
)

const (
	trendingDefault  = 5
	trendingMax      = 20
	trendingCacheTTL = 60 * time.Second
)

// BrowsePublic lists PUBLIC topics, optionally filtered by a
// case-insensitive name substring, paginated.
func (h *TopicHandler) BrowsePublic(c echo.Context) error {
	page, limit := pageParams(c)
	q := repository.TopicSearchQuery{
		Search:   c.QueryParam("search"),
		Page:     page,
		PageSize: limit,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, total, err := h.Topics.SearchPublic(ctx, q)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "browse topics failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"topics":       rows,
		"total":        total,
		"total_pages":  totalPages(total, limit),
		"current_page": page,
	})
}

// Trending ranks PUBLIC topics by subscriber count. Results go through a
// short-TTL Redis cache since subscriber counts change slowly and this
// listing backs the most-requested sidebar. A cache failure falls through
// to the database.
func (h *TopicHandler) Trending(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = trendingDefault
	}
	if limit > trendingMax {
		limit = trendingMax
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cacheKey := "trending:topics:" + strconv.Itoa(limit)
	if h.Cache != nil {
		if raw, err := h.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []repository.PublicTopicRow
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return c.JSON(http.StatusOK, echo.Map{"topics": cached})
			}
		}
	}

	rows, err := h.Topics.Trending(ctx, limit)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "trending topics failed", err)
	}

	if h.Cache != nil {
		if raw, err := json.Marshal(rows); err == nil {
			// Best effort; a failed SET only costs the next request a query.
			h.Cache.Set(ctx, cacheKey, raw, trendingCacheTTL)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"topics": rows})
}
