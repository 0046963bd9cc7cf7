package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Run serves the router until the listener fails.
func Run(router *gin.Engine, addr string) error {
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
