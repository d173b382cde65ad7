// Package middleware содержит gin middleware сервера качества: request id,
// CORS, восстановление после паник и rate limiting.
package middleware

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "sigmaq/server/errors"
)

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// RequestID добавляет уникальный request ID к каждому запросу
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Генерируем или получаем request ID из заголовка
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}

// GetRequestID извлекает request ID из gin context
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}

	reqID, exists := c.Get("request_id")
	if !exists {
		return ""
	}

	if id, ok := reqID.(string); ok {
		return id
	}

	return ""
}

// CORS добавляет CORS заголовки
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Recovery перехватывает паники обработчиков и отвечает JSON ошибкой
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("🔥 Паника в обработчике %s %s: %v\n%s",
					c.Request.Method, c.Request.URL.Path, rec, debug.Stack())

				AbortWithError(c, apperrors.NewInternalError("panic in handler", nil))
			}
		}()

		c.Next()
	}
}

// RateLimit ограничивает частоту запросов общим token bucket
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:     "Muitas requisições, tente novamente em instantes",
				Timestamp: time.Now().Format(time.RFC3339),
				RequestID: GetRequestID(c),
			})
			return
		}

		c.Next()
	}
}

// AbortWithError логирует ошибку и завершает запрос JSON ответом.
// AppError разворачивается в свой статус, остальные ошибки дают 500.
func AbortWithError(c *gin.Context, err error) {
	reqID := GetRequestID(c)

	statusCode := http.StatusInternalServerError
	message := "Внутренняя ошибка сервера"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.UserMessage()
		log.Printf("HTTP %d %s %s: %v (context=%s, request_id=%s)",
			statusCode, c.Request.Method, c.Request.URL.Path, appErr.Unwrap(), appErr.Context, reqID)
	} else {
		log.Printf("HTTP %d %s %s: %v (request_id=%s)",
			statusCode, c.Request.Method, c.Request.URL.Path, err, reqID)
	}

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
