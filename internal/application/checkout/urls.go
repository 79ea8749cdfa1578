package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"mobipaid-gateway/internal/domain/order"
)

// URLBuilder ショップ側の戻り先URLを組み立てる
type URLBuilder struct {
	baseURL string
}

// NewURLBuilder 新しいURLBuilderを作成
func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// CancelURL 決済キャンセル時の戻り先
func (b *URLBuilder) CancelURL() string {
	return b.baseURL + "/checkout"
}

// ReturnURL 決済完了後の注文完了ページ（注文キー付き）
func (b *URLBuilder) ReturnURL(o *order.Order) string {
	u := fmt.Sprintf("%s/api/v1/orders/%d/received", b.baseURL, o.OrderID())
	if o.OrderKey() == "" {
		return u
	}
	return u + "?" + order.KeyQueryParam + "=" + url.QueryEscape(o.OrderKey())
}
