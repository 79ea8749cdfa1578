package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"mobipaid-gateway/internal/presentation/openapi"
)

const openAPIPath = "/openapi.yaml"

// SetupSwagger OpenAPI仕様を配信し、本番以外ではSwagger UIも公開する
func SetupSwagger(e *echo.Echo, environment string) {
	e.GET(openAPIPath, func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/x-yaml", openapi.Spec)
	})

	if environment == "production" {
		return
	}

	e.GET("/swagger", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.URL(openAPIPath),
		echoSwagger.DocExpansion("list"),
	))
}
