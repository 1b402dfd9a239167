package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go-live-auction/internal/handler"
	"go-live-auction/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	InvalidJSON = `{"invalid": json}`
)

const testSessionToken = "test-session-token"

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func createAuthedJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req := createJSONHTTPRequest(method, url, data)
	req.Header.Set("Authorization", "Bearer "+testSessionToken)
	return req
}

// newTestAuth 回傳 middleware 與已登入的 user id
func newTestAuth() (gin.HandlerFunc, uuid.UUID) {
	sessions := session.NewMemoryStore()
	userID := uuid.New()
	sessions.Put(testSessionToken, userID)
	return handler.SessionAuth(sessions), userID
}
