package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/logger"
)

// newProxy passes requests through to target unchanged, keeping the path and
// query and adding the request id.
func (s *Server) newProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host
			if id := requestIDFrom(pr.In.Context()); id != "" {
				pr.Out.Header.Set(requestIDHeader, id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WithRequest(s.logger, requestIDFrom(r.Context()), target.String()).
				Error("proxying to api", zap.String("path", r.URL.Path), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Bad gateway"})
		},
	}
}
