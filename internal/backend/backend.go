package backend

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "http://localhost:5000"
	userAgent     = "spigell/talentmatch"
)

// Client talks to the matching backend. It keeps no state between calls.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client for the backend at apiURL. A zero timeout means requests
// wait until the backend answers or ctx is done.
func New(logger *zap.Logger, apiURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}
