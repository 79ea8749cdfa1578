package auth

// IssueTokenRequest 管理者トークン発行リクエスト
type IssueTokenRequest struct {
	AdminID string
}

// IssueTokenResponse 管理者トークン発行レスポンス
type IssueTokenResponse struct {
	Token     string
	ExpiresIn int64  // 秒単位
	TokenType string // "Bearer"
}
