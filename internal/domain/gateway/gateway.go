package gateway

// ゲートウェイ識別子と外部APIの固定値
const (
	// GatewayID 注文の支払い方法タグ
	GatewayID = "mobipaid"
	// PaymentTypeDB 即時決済（Debit）
	PaymentTypeDB = "DB"
	// ResultACK 決済成功を示す結果コード
	ResultACK = "ACK"
	// LinkResultSuccess 決済リンク作成成功を示す結果
	LinkResultSuccess = "success"
	// RefundStatusRefund 返金成功を示すステータス
	RefundStatusRefund = "refund"
	// ErrorFieldCurrency 通貨非対応を示すエラーフィールド
	ErrorFieldCurrency = "currency"
	// LiveKeyPrefix 本番用アクセスキーの接頭辞
	LiveKeyPrefix = "mp_live"
)

// 注文メモ
const (
	NotePaymentSuccess    = "Mobipaid payment successfull:"
	NotePaymentFailed     = "Mobipaid payment failed:"
	NotePartialRefundDone = "Mobipaid partial refund successfull."
	NoteFullRefundDone    = "Mobipaid full refund successfull."
	NoteOverpaid          = "Mobipaid notes: You still have amount to be refunded, because Merchant use tax/tip when customer paid. Please contact the merchant to refund the tax/tip amount."
)

// Settings ゲートウェイ設定
type Settings struct {
	Enabled       bool
	Title         string
	Description   string
	AccessKey     string
	EnableLogging bool
}

// IsAvailable 有効化されていてアクセスキーが設定されているか
func (s Settings) IsAvailable() bool {
	return s.Enabled && s.AccessKey != ""
}

// IsTestMode アクセスキーの接頭辞からテストモードかどうかを判定
func (s Settings) IsTestMode() bool {
	return !IsLiveKey(s.AccessKey)
}

// IsLiveKey 本番用アクセスキーかどうかを返す
func IsLiveKey(accessKey string) bool {
	return len(accessKey) >= len(LiveKeyPrefix) && accessKey[:len(LiveKeyPrefix)] == LiveKeyPrefix
}
