package handler

// IssueTokenRequest 管理者トークン発行リクエスト
// @Description 管理者トークン発行リクエスト
type IssueTokenRequest struct {
	AdminID string `json:"admin_id" example:"shop-admin"`
}

// IssueTokenResponse 管理者トークン発行レスポンス
// @Description 管理者トークン発行レスポンス
type IssueTokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJzaG9wLWFkbWluIn0.signature"`
	ExpiresIn int64  `json:"expires_in" example:"3600"`
	TokenType string `json:"token_type" example:"Bearer"`
}
