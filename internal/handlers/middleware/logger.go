package middleware

import (
	"net/http"
	"time"
)

type logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type responseData struct {
	status int
	size   int
}

// Remember status and size written by the wrapped handler
type logWriter struct {
	http.ResponseWriter
	data responseData
}

func (w *logWriter) Write(p []byte) (int, error) {
	size, err := w.ResponseWriter.Write(p)
	w.data.size += size
	return size, err
}

func (w *logWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.status = statusCode
}

// Let http.ResponseController reach the original writer
func (w *logWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Access log: one record per request, server errors logged with Error level
func LoggerMiddleware(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{
				ResponseWriter: w,
				data:           responseData{status: http.StatusOK},
			}

			next.ServeHTTP(lw, r)

			log := l.Info
			if lw.data.status >= http.StatusInternalServerError {
				log = l.Error
			}

			log(
				"got HTTP request",
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
				"status", lw.data.status,
				"size", lw.data.size,
			)
		})
	}
}
