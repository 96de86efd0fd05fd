package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"(11) 98765-4321":   "5511987654321",
		"011 3456-7890":     "551134567890",
		"+55 11 98765-4321": "5511987654321",
		"":                  "",
		"ext. none":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestSendMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device1/send/message", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"message":"ok","data":{"message_id":"m1","status":"sent"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "bot", "secret", "/device1/")
	resp, err := c.SendMessage(context.Background(), "(11) 98765-4321", "Entrega concluida")
	require.NoError(t, err)

	assert.Equal(t, "m1", resp.Data.MessageID)
	assert.Equal(t, map[string]string{
		"phone":   "5511987654321@s.whatsapp.net",
		"message": "Entrega concluida",
	}, got)
}

func TestSendMessageErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/send/message" {
			w.Write([]byte(`{"success":false,"message":"not registered"}`))
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "", "").SendTextMessage(context.Background(), "11987654321", "hi")
	assert.ErrorContains(t, err, "not registered")

	err = NewClient(srv.URL, "", "", "other").SendTextMessage(context.Background(), "11987654321", "hi")
	assert.ErrorContains(t, err, "502")

	err = NewClient(srv.URL, "", "", "").SendTextMessage(context.Background(), "n/a", "hi")
	assert.ErrorContains(t, err, "invalid phone")
}
