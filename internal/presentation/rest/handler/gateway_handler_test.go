package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	gatewayapp "mobipaid-gateway/internal/application/gateway"
)

func TestGatewayHandler_GetInfo(t *testing.T) {
	gw := new(MockPaymentGateway)
	gw.On("Info").Return(&gatewayapp.GatewayInfo{
		ID:          "mobipaid",
		Title:       "Mobipaid",
		Description: "Pay with Mobipaid",
		Enabled:     true,
		Available:   false,
		TestMode:    true,
		Supports:    []string{"products", "refunds"},
		Warnings:    []string{"Please enter an access key!"},
	})

	e := newTestEcho()
	e.GET("/api/v1/gateway", NewGatewayHandler(gw).GetInfo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gateway", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": "mobipaid",
		"title": "Mobipaid",
		"description": "Pay with Mobipaid",
		"enabled": true,
		"available": false,
		"test_mode": true,
		"supports": ["products", "refunds"],
		"warnings": ["Please enter an access key!"]
	}`, rec.Body.String())
}
