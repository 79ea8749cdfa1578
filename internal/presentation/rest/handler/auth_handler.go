package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authapp "mobipaid-gateway/internal/application/auth"
)

// TokenIssuer 管理者トークンの発行
type TokenIssuer interface {
	IssueToken(ctx context.Context, req *authapp.IssueTokenRequest) (*authapp.IssueTokenResponse, error)
}

// AuthHandler 認証関連ハンドラー
type AuthHandler struct {
	issuer TokenIssuer
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
	}
}

// IssueToken 管理者トークン発行ハンドラー
// @Summary 管理者トークンを発行
// @Description ショップ本体のAPIキーと引き換えに、返金操作用のJWTを発行します
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKey
// @Param request body IssueTokenRequest true "トークン発行リクエスト"
// @Success 200 {object} IssueTokenResponse "トークン発行成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Router /admin/token [post]
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var reqBody IssueTokenRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.AdminID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "admin_id is required")
	}

	resp, err := h.issuer.IssueToken(c.Request().Context(), &authapp.IssueTokenRequest{
		AdminID: reqBody.AdminID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, IssueTokenResponse{
		Token:     resp.Token,
		ExpiresIn: resp.ExpiresIn,
		TokenType: resp.TokenType,
	})
}
