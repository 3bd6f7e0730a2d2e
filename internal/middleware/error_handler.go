package middleware

import (
	"net/http"

	"github.com/attendly/checkin-console/internal/dto"
	"github.com/labstack/echo/v4"
)

// SignInPath is where the console UI sends the operator when the cached
// credential has been rejected.
const SignInPath = "/sign-in"

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	resp := dto.ErrorResponse{Message: msg}
	if code == http.StatusUnauthorized {
		resp.Redirect = SignInPath
	}

	_ = c.JSON(code, resp)
}
