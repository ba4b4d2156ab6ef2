package cloudfunctions

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep299/company-summarizer/internal/application"
	"github.com/pep299/company-summarizer/internal/config"
	"github.com/pep299/company-summarizer/internal/logging"
)

func init() {
	functions.HTTP("Summarize", Summarize)
}

var (
	handlerOnce sync.Once
	handler     http.Handler
	handlerErr  error
)

// buildHandler creates the application once per function instance
func buildHandler() (http.Handler, error) {
	handlerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			handlerErr = err
			return
		}

		logger := logging.NewWriter(os.Stderr, cfg.LogLevel)
		app, err := application.New(context.Background(), cfg, logger)
		if err != nil {
			handlerErr = err
			return
		}

		handler = app.Handler()
	})
	return handler, handlerErr
}

// Summarize is the HTTP function serving the summarizer routes
func Summarize(w http.ResponseWriter, r *http.Request) {
	h, err := buildHandler()
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.ServeHTTP(w, r)
}
