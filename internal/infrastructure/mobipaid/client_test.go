package mobipaid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobipaid-gateway/internal/domain/gateway"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, response string, rec *recordedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.Method = r.Method
			rec.Path = r.URL.EscapedPath()
			rec.Auth = r.Header.Get("Authorization")
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				_ = json.Unmarshal(data, &rec.Body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientConfig_BaseURL(t *testing.T) {
	tests := []struct {
		name      string
		accessKey string
		want      string
	}{
		{
			name:      "正常系: mp_liveで始まるキーは本番URL",
			accessKey: "mp_live_abc",
			want:      "https://live.mobipaid.io/v2",
		},
		{
			name:      "正常系: それ以外はテストURL",
			accessKey: "mp_test_abc",
			want:      "https://test.mobipaid.io/v2",
		},
		{
			name:      "正常系: 空のキーはテストURL",
			accessKey: "",
			want:      "https://test.mobipaid.io/v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ClientConfig{
				AccessKey: tt.accessKey,
				LiveURL:   "https://live.mobipaid.io/v2/",
				TestURL:   "https://test.mobipaid.io/v2",
			}
			assert.Equal(t, tt.want, cfg.BaseURL())
		})
	}
}

func TestClient_CreatePaymentLink(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		want     *gateway.PaymentLinkResponse
	}{
		{
			name:     "正常系: リンク作成成功",
			status:   http.StatusOK,
			response: `{"result":"success","long_url":"https://pay.example/abc"}`,
			want: &gateway.PaymentLinkResponse{
				StatusCode: 200,
				Result:     "success",
				LongURL:    "https://pay.example/abc",
			},
		},
		{
			name:     "異常系: 通貨非対応",
			status:   http.StatusUnprocessableEntity,
			response: `{"error_field":"currency","message":"invalid currency"}`,
			want: &gateway.PaymentLinkResponse{
				StatusCode: 422,
				ErrorField: "currency",
				Message:    "invalid currency",
			},
		},
		{
			name:     "異常系: JSONでない本文",
			status:   http.StatusInternalServerError,
			response: `<html>oops</html>`,
			want: &gateway.PaymentLinkResponse{
				StatusCode: 500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			srv := newTestServer(t, tt.status, tt.response, &rec)
			client := NewClient(&ClientConfig{AccessKey: "mp_test_key", TestURL: srv.URL})

			got, err := client.CreatePaymentLink(context.Background(), &gateway.PaymentLinkRequest{
				Reference:   "wc-1001",
				PaymentType: gateway.PaymentTypeDB,
				Currency:    "USD",
				Amount:      25.5,
				CartItems:   []gateway.CartItem{{Name: "Mug", Qty: 2}},
				CancelURL:   "https://shop.example/checkout",
				ReturnURL:   "https://shop.example/order-received/1001",
				ResponseURL: "https://shop.example/order-received/1001?mp_token=tok",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, http.MethodPost, rec.Method)
			assert.Equal(t, "/links", rec.Path)
			assert.Equal(t, "Bearer mp_test_key", rec.Auth)
			assert.Equal(t, "wc-1001", rec.Body["reference"])
			assert.Equal(t, "DB", rec.Body["payment_type"])
			assert.Equal(t, 25.5, rec.Body["amount"])
			items := rec.Body["cart_items"].([]interface{})
			require.Len(t, items, 1)
			assert.Equal(t, map[string]interface{}{"name": "Mug", "qty": float64(2)}, items[0])
		})
	}
}

func TestClient_Refund(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		response      string
		wantStatus    string
		wantMessage   string
		wantSucceeded bool
	}{
		{
			name:          "正常系: 返金成功",
			status:        http.StatusOK,
			response:      `{"status":"refund","message":"ok"}`,
			wantStatus:    "refund",
			wantMessage:   "ok",
			wantSucceeded: true,
		},
		{
			name:          "異常系: 返金拒否",
			status:        http.StatusPaymentRequired,
			response:      `{"status":"failed","message":"insufficient balance"}`,
			wantStatus:    "failed",
			wantMessage:   "insufficient balance",
			wantSucceeded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			srv := newTestServer(t, tt.status, tt.response, &rec)
			client := NewClient(&ClientConfig{AccessKey: "mp_test_key", TestURL: srv.URL})

			got, err := client.Refund(context.Background(), "PAY 1", &gateway.RefundRequest{
				Email:  "buyer@example.com",
				Amount: 10,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.Equal(t, tt.wantSucceeded, got.Succeeded())
			assert.Equal(t, "/refund/PAY%201", rec.Path)
			assert.Equal(t, "buyer@example.com", rec.Body["email"])
			assert.Equal(t, float64(10), rec.Body["amount"])
		})
	}
}

func TestClient_GetPayment(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		wantAmount float64
	}{
		{
			name:       "正常系: 数値の金額",
			status:     http.StatusOK,
			response:   `{"payment":{"amount":105.25}}`,
			wantAmount: 105.25,
		},
		{
			name:       "正常系: 文字列の金額",
			status:     http.StatusOK,
			response:   `{"payment":{"amount":"99.90"}}`,
			wantAmount: 99.90,
		},
		{
			name:       "異常系: 決済が見つからない",
			status:     http.StatusNotFound,
			response:   `{"message":"not found"}`,
			wantAmount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recordedRequest
			srv := newTestServer(t, tt.status, tt.response, &rec)
			client := NewClient(&ClientConfig{AccessKey: "mp_live_key", LiveURL: srv.URL})

			got, err := client.GetPayment(context.Background(), "pay_123")

			require.NoError(t, err)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.InDelta(t, tt.wantAmount, got.Amount, 0.0001)
			assert.Equal(t, http.MethodGet, rec.Method)
			assert.Equal(t, "/payment/pay_123", rec.Path)
			assert.Equal(t, "Bearer mp_live_key", rec.Auth)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(&ClientConfig{
		AccessKey: "mp_test_key",
		TestURL:   srv.URL,
		Timeout:   20 * time.Millisecond,
	})

	_, err := client.CreatePaymentLink(context.Background(), &gateway.PaymentLinkRequest{Reference: "wc-1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CreatePaymentLink request failed")
}
