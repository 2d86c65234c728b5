package whatsapp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvolutionProvider_SendText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody sendTextRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"key":{"id":"abc"}}`))
	}))
	defer ts.Close()

	p := NewEvolutionProvider(ts.URL+"/", " secret-key ", 0)
	err := p.SendText(context.Background(), "loja", "5511999990000", "Olá!")
	require.NoError(t, err)

	assert.Equal(t, "/message/sendText/loja", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "5511999990000", gotBody.Number)
	assert.Equal(t, "Olá!", gotBody.TextMessage.Text)
}

func TestEvolutionProvider_SendText_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer ts.Close()

	p := NewEvolutionProvider(ts.URL, "wrong", 0)
	err := p.SendText(context.Background(), "loja", "5511999990000", "oi")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestEvolutionProvider_Instances(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	mux := http.NewServeMux()
	mux.HandleFunc("/instance/create", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "user-1", body["instanceName"])
		assert.Equal(t, "5511988887777", body["number"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"instance": map[string]string{"instanceName": "user-1", "status": "created"},
			"qrcode":   map[string]string{"base64": encoded},
		})
	})
	mux.HandleFunc("/instance/connectionState/user-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"instance":{"instanceName":"user-1","state":"open"}}`))
	})
	mux.HandleFunc("/instance/connect/user-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"2@abcdef"}`))
	})
	mux.HandleFunc("/instance/delete/user-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx := context.Background()
	p := NewEvolutionProvider(ts.URL, "k", 0)

	info, err := p.CreateInstance(ctx, "user-1", "5511988887777")
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Name)
	assert.Equal(t, "created", info.Status)
	assert.Equal(t, png, info.QRCode)

	state, err := p.ConnectionState(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateOpen, state)

	qr, err := p.QRCode(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, qr)

	require.NoError(t, p.DeleteInstance(ctx, "user-1"))
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"(11) 99999-0000":    "5511999990000",
		"11 3333-4444":       "551133334444",
		"+55 11 99999-0000":  "5511999990000",
		"5511999990000":      "5511999990000",
		"351912345678":       "55351912345678",
		"":                   "",
		"abc":                "",
		"(55) 99999-0000":    "5555999990000",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}
