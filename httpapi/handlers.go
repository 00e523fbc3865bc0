package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/websearch/search"
)

type toolsResponse struct {
	Tools []search.Definition `json:"tools"`
}

func (s *Server) listTools(c echo.Context) error {
	return c.JSON(http.StatusOK, toolsResponse{Tools: []search.Definition{s.deps.Tool.Definition()}})
}

func (s *Server) searchWeb(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read request body")
	}

	env, err := s.deps.Tool.InvokeJSON(c.Request().Context(), body)
	if errors.Is(err, search.ErrInvalidInput) {
		return c.JSON(http.StatusBadRequest, env)
	}
	return c.JSON(http.StatusOK, env)
}
