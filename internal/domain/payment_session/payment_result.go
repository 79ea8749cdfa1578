package payment_session

// PaymentResult 注文に保存する決済結果フラグ
type PaymentResult string

const (
	// PaymentResultSuccess 成功フラグ
	// 既存データとの互換性のため、保存値は "succes" のまま維持する
	PaymentResultSuccess PaymentResult = "succes"
	// PaymentResultFailed 失敗フラグ
	PaymentResultFailed PaymentResult = "failed"
)

// ParsePaymentResult 保存値からPaymentResultを復元
// 綴りを修正した "success" も成功として扱う
func ParsePaymentResult(s string) (PaymentResult, bool) {
	switch s {
	case "succes", "success":
		return PaymentResultSuccess, true
	case "failed":
		return PaymentResultFailed, true
	default:
		return "", false
	}
}

// String 文字列表現を返す
func (r PaymentResult) String() string {
	return string(r)
}

// IsSuccess 成功フラグかどうかを返す
func (r PaymentResult) IsSuccess() bool {
	return r == PaymentResultSuccess
}
