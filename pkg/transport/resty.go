package transport

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"matchharvest/pkg/logger"
)

// NewHTTPClient returns a resty client for baseURL that logs through log.
// Retries are left to Transport.
func NewHTTPClient(baseURL string, timeout time.Duration, log logger.Logger) *resty.Client {
	if log == nil {
		log = logger.GetLogger()
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "matchharvest")
	client.SetRetryCount(0)
	client.SetLogger(restyLogger{log: log})
	return client
}

// restyLogger adapts Logger to resty.Logger
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
