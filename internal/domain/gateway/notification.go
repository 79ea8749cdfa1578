package gateway

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// TokenQueryParam 検証トークンのクエリパラメータ名
const TokenQueryParam = "mp_token"

// TokenMask ログ出力時のトークン置換文字列
const TokenMask = "*****"

// PaymentOutcome Webhookで受信した決済結果
type PaymentOutcome struct {
	TransactionID string `json:"transaction_id"`
	Result        string `json:"result"`
	PaymentID     string `json:"payment_id"`
	Currency      string `json:"currency"`
}

// IsACK 決済成功かどうかを返す
func (o PaymentOutcome) IsACK() bool {
	return o.Result == ResultACK
}

// ParseNotification Webhook本文 {"response": "<json文字列>"} を解析
// 解析できない項目は空文字として扱い、エラーは返さない
func ParseNotification(body []byte) PaymentOutcome {
	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Response) == 0 {
		return PaymentOutcome{}
	}

	inner := []byte(envelope.Response)
	var encoded string
	if err := json.Unmarshal(envelope.Response, &encoded); err == nil {
		inner = []byte(unslash(encoded))
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(inner, &fields); err != nil {
		return PaymentOutcome{}
	}

	return PaymentOutcome{
		TransactionID: stringField(fields, "transaction_id"),
		Result:        stringField(fields, "result"),
		PaymentID:     stringField(fields, "payment_id"),
		Currency:      stringField(fields, "currency"),
	}
}

// stringField 文字列または数値の項目を文字列として取り出す
func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return ""
	}
}

// unslash 送信側でエスケープされたバックスラッシュを取り除く
func unslash(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// WithToken URLに検証トークンのクエリパラメータを付与
func WithToken(rawURL, token string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + TokenQueryParam + "=" + url.QueryEscape(token)
}

var tokenParamRegex = regexp.MustCompile(`([?&]` + TokenQueryParam + `=)[^&#]*`)

// RedactToken URL内の検証トークンを伏字に置換
func RedactToken(rawURL string) string {
	return tokenParamRegex.ReplaceAllString(rawURL, "${1}"+TokenMask)
}
