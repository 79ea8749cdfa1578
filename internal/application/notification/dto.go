package notification

// HandleWebhookRequest 決済結果通知
type HandleWebhookRequest struct {
	OrderID int64
	Token   string
	Body    []byte
}

// HandleWebhookResponse 通知処理結果
// Handledがtrueの場合、呼び出し元は確定応答（"OK"）を返して処理を終える
type HandleWebhookResponse struct {
	Handled bool
	Outcome string
}

// 通知処理の結果区分
const (
	OutcomePassThrough = "pass_through"
	OutcomeIgnored     = "ignored"
	OutcomeTampered    = "tampered"
	OutcomeACK         = "ack"
	OutcomeFailed      = "failed"
)
