package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/api"
	"github.com/nikdata/oura-hrv/internal/nightly"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the trigger API (POST /sync, POST /organize)",
		Long: `Serve a small HTTP API so a scheduler or webhook can trigger runs.
Requests other than GET /health need "Authorization: Bearer $SERVE_TOKEN".`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

// serverApp implements api.App for the lifetime of the server.
type serverApp struct {
	env       *env
	syncer    api.Syncer
	organizer api.Organizer
}

func (a *serverApp) Logger() internal.Logger  { return a.env.logger }
func (a *serverApp) Syncer() api.Syncer       { return a.syncer }
func (a *serverApp) Organizer() api.Organizer { return a.organizer }
func (a *serverApp) DataDir() string          { return a.env.cfg.DataDir }
func (a *serverApp) DateRange(start, end string) (internal.DateRange, error) {
	return a.env.dateRange(start, end)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if e.cfg.ServeToken == "" {
		return errors.New("SERVE_TOKEN must be set to serve the trigger API")
	}

	ctx := cmd.Context()
	p, err := e.newPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close(e.logger)

	if e.cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	app := &serverApp{env: e, syncer: p.syncer, organizer: nightly.NewOrganizer(e.logger)}
	srv := &http.Server{
		Addr:              e.cfg.ServeAddr,
		Handler:           api.NewRouter(app, e.cfg.ServeToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Infof("Server running on %s", e.cfg.ServeAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.logger.Infof("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
