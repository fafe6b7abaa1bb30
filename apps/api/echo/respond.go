package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func respond(ctx echo.Context, code int, msg string, data ...interface{}) error {
	resp := Response{Success: true, Message: msg}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	return ctx.JSON(code, resp)
}

func respondPage(ctx echo.Context, code int, msg string, items interface{}, pg core.Pagination) error {
	return respond(ctx, code, msg, echo.Map{
		"items":      items,
		"pagination": pg,
	})
}
