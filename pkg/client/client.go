package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kattn/djgenetics/pkg/config"
	"github.com/kattn/djgenetics/pkg/logger"
)

// UserAgent identifies the CLI to the pattern API
const UserAgent = "djgenetics/0.1.0"

var httpClient *resty.Client

// Init builds the HTTP client from api.base_url, api.timeout and api.token
func Init() {
	httpClient = resty.New()

	httpClient.SetBaseURL(config.GetString("api.base_url"))
	httpClient.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	httpClient.SetHeader("User-Agent", UserAgent)
	if token := config.GetString("api.token"); token != "" {
		httpClient.SetAuthToken(token)
	}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode())
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the bearer token sent with every request
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}

// Reset drops the client so the next GetClient re-reads the config
func Reset() {
	httpClient = nil
}
