package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"friendgraph/models"
	"friendgraph/services"
	"friendgraph/utils"
)

type SearchResponse struct {
	Count    int                  `json:"count"`
	Next     *string              `json:"next"`
	Previous *string              `json:"previous"`
	Results  []models.UserSummary `json:"results"`
}

func (h *Handler) SearchUsers(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		utils.NotFound(c, "Invalid page.")
		return
	}

	res, err := h.accounts.Search(c.Request.Context(), services.SearchQuery{
		Username: c.Query("username"),
		Email:    c.Query("email"),
		Page:     page,
	})
	if errors.Is(err, services.ErrInvalidPage) {
		utils.NotFound(c, "Invalid page.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := SearchResponse{Count: res.Count, Results: res.Results}
	if res.HasNext {
		resp.Next = pageURL(c, res.Page+1)
	}
	if res.HasPrev {
		resp.Previous = pageURL(c, res.Page-1)
	}
	utils.Success(c, resp)
}

// pageURL rebuilds the absolute request URL pointing at page. The first
// page carries no page parameter.
func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	s := u.String()
	return &s
}
