package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRoutes(filesHandler *FilesHandler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /files/list", filesHandler.GetFilesList)
	mux.HandleFunc("GET /files/data", filesHandler.GetFilesData)
	mux.HandleFunc("GET /health", Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", NotFound)

	return chain(mux, cors, requestID, accessLog(logger))
}
