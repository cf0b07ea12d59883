package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/service"
)

var errRunInProgress = errors.New("a run is already in progress")

func GetHealth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), gin.H{"status": "ok"}, nil)
	}
}

// PostSync runs the pipeline once. runs is shared with PostOrganize so that
// the two never touch the data directory at the same time.
func PostSync(app App, runs *sync.Mutex) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SyncRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
				return
			}
		}
		if err := service.ValidateSyncRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}
		r, err := app.DateRange(req.StartDate, req.EndDate)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid date range")
			return
		}

		if !runs.TryLock() {
			HandleError(c, app.Logger(), errRunInProgress, http.StatusConflict, "Sync rejected")
			return
		}
		defer runs.Unlock()

		summary, err := app.Syncer().Run(c.Request.Context(), r)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Sync failed")
			return
		}
		HandleSuccess(c, app.Logger(), summary, map[string]any{
			"start_date": r.Start.Format(internal.DateLayout),
			"end_date":   r.End.Format(internal.DateLayout),
		})
	}
}

func PostOrganize(app App, runs *sync.Mutex) gin.HandlerFunc {
	return func(c *gin.Context) {
		dryRun := false
		if v := c.Query("dry_run"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid dry_run")
				return
			}
			dryRun = b
		}

		if !runs.TryLock() {
			HandleError(c, app.Logger(), errRunInProgress, http.StatusConflict, "Organize rejected")
			return
		}
		defer runs.Unlock()

		report, err := app.Organizer().Organize(app.DataDir(), dryRun)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Organize failed")
			return
		}
		HandleSuccess(c, app.Logger(), report, map[string]any{
			"moved":             len(report.Moves),
			"already_organized": len(report.AlreadyOrganized),
			"skipped":           len(report.Skipped),
			"failed":            len(report.Failed),
		})
	}
}
