package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models/notification"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UnifiedResponse represents the standard API response format
type UnifiedResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID     string `json:"request_id"`
	Timestamp     string `json:"timestamp"`
	ExecutionTime string `json:"execution_time"`
	Method        string `json:"method"`
	Path          string `json:"path"`
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// UnifiedResponseMiddleware transforms all service responses into the
// gateway envelope and records an audit entry per request.
func UnifiedResponseMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		// Raw payloads (websocket upgrades, CSV downloads, swagger assets)
		// pass through untouched but are still audited.
		if shouldSkipUnifiedResponse(c) {
			c.Next()
			executionTime := time.Since(startTime)
			statusCode := c.Writer.Status()
			if statusCode == 0 {
				statusCode = 200
			}
			go saveAuditLogAsync(c, "", statusCode, requestID, executionTime)
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			status:         200,
		}
		c.Writer = w

		c.Next()

		executionTime := time.Since(startTime)
		originalResponse := w.body.String()
		statusCode := w.status

		unified := transformToUnifiedResponse(c, originalResponse, statusCode, requestID, executionTime)

		w.ResponseWriter.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(statusCode)
		json.NewEncoder(w.ResponseWriter).Encode(unified)

		go saveAuditLogAsync(c, originalResponse, statusCode, requestID, executionTime)
	}
}

// transformToUnifiedResponse converts the original response to unified format
func transformToUnifiedResponse(c *gin.Context, originalResponse string, statusCode int, requestID string, executionTime time.Duration) UnifiedResponse {
	isSuccess := statusCode >= 200 && statusCode < 300

	unified := UnifiedResponse{
		Success: isSuccess,
		Message: getAutoMessage(c.Request.Method, statusCode, isSuccess),
		Meta: &MetaInfo{
			RequestID:     requestID,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			ExecutionTime: fmt.Sprintf("%dms", executionTime.Milliseconds()),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
		},
	}

	if originalResponse == "" {
		return unified
	}

	var originalData interface{}
	if err := json.Unmarshal([]byte(originalResponse), &originalData); err != nil {
		if !isSuccess {
			unified.Error = &ErrorInfo{Code: getErrorCode(statusCode), Details: originalResponse}
		}
		return unified
	}

	if isSuccess {
		if dataMap, ok := originalData.(map[string]interface{}); ok {
			if data, exists := dataMap["data"]; exists {
				unified.Data = data
			} else {
				unified.Data = originalData
			}
			if msg, exists := dataMap["message"]; exists {
				if msgStr, ok := msg.(string); ok && msgStr != "" {
					unified.Message = msgStr
				}
			}
		} else {
			unified.Data = originalData
		}
		return unified
	}

	if errorMap, ok := originalData.(map[string]interface{}); ok {
		if errMsg, exists := errorMap["error"]; exists {
			unified.Error = &ErrorInfo{
				Code:    getErrorCode(statusCode),
				Details: fmt.Sprintf("%v", errMsg),
			}
			return unified
		}
	}
	unified.Error = &ErrorInfo{Code: getErrorCode(statusCode), Details: originalResponse}
	return unified
}

// getAutoMessage generates appropriate success/error messages
func getAutoMessage(method string, statusCode int, isSuccess bool) string {
	if isSuccess {
		switch method {
		case "POST":
			return "Record created successfully"
		case "PUT", "PATCH":
			return "Record updated successfully"
		case "DELETE":
			return "Record deleted successfully"
		case "GET":
			return "Data retrieved successfully"
		default:
			return "Operation completed successfully"
		}
	}
	switch statusCode {
	case 400:
		return "Invalid request data"
	case 401:
		return "Authentication required"
	case 403:
		return "Permission denied"
	case 404:
		return "Resource not found"
	case 409:
		return "Resource already exists"
	case 422:
		return "Validation failed"
	case 429:
		return "Too many requests"
	case 500:
		return "Internal server error"
	default:
		return "Operation failed"
	}
}

// getErrorCode generates error codes based on status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 422:
		return "VALIDATION_ERROR"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// saveAuditLogAsync writes the audit row off the request path
func saveAuditLogAsync(c *gin.Context, originalResponse string, statusCode int, requestID string, executionTime time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Audit log failed: %v", r)
		}
	}()

	var userID *uuid.UUID
	if value, exists := c.Get("userID"); exists {
		if id, ok := value.(uuid.UUID); ok {
			userID = &id
		}
	}

	var responseBody datatypes.JSON
	if originalResponse != "" && json.Valid([]byte(originalResponse)) {
		responseBody = datatypes.JSON(originalResponse)
	}

	auditLog := notification.AuditLog{
		UserID:       userID,
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		StatusCode:   statusCode,
		ResponseBody: responseBody,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Duration:     executionTime.Milliseconds(),
		RequestID:    requestID,
	}

	db := database.GetDB()
	if db == nil {
		log.Printf("⚠️ Audit log skipped: database not initialized")
		return
	}

	if err := db.Create(&auditLog).Error; err != nil {
		log.Printf("❌ Failed to save audit log: %v", err)
	}
}

// shouldSkipUnifiedResponse checks if the request path bypasses the envelope
func shouldSkipUnifiedResponse(c *gin.Context) bool {
	path := c.Request.URL.Path

	excludePaths := []string{
		"/ws/",
		"/swagger",
		"/health",
		"/api/inspections/export",
	}
	for _, excludePath := range excludePaths {
		if strings.HasPrefix(path, excludePath) {
			return true
		}
	}

	return false
}
