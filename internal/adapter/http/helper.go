package http

import (
	"strings"

	"lending-engine/internal/adapter/middleware"
	"lending-engine/pkg/id"

	"github.com/labstack/echo/v4"
)

// actorID is the user performing the action, as asserted by the front end.
func actorID(c echo.Context) (string, bool) {
	v := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
	return v, id.ValidUserID(v)
}

func userParam(c echo.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	return v, id.ValidUserID(v)
}
