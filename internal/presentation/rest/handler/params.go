package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// parseOrderID パスまたはクエリの注文IDを解析
func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}
	return id, nil
}
