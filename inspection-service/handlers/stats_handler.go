package handlers

import (
	"net/http"
	"time"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
	"inspeksi-backend/shared/database/models/inspection"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// DashboardStats aggregates the admin dashboard counters
type DashboardStats struct {
	Organizations       int64 `json:"organizations"`
	Buildings           int64 `json:"buildings"`
	Locations           int64 `json:"locations"`
	Users               int64 `json:"users"`
	Inspections         int64 `json:"inspections"`
	InspectionsToday    int64 `json:"inspections_today"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
}

// GetDashboardStats returns aggregate counts for the admin dashboard
// @Summary Dashboard statistics
// @Description Aggregate entity counts, gathered concurrently
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Dashboard counters"
// @Failure 500 {object} map[string]string "Server error"
// @Router /stats/dashboard [get]
func GetDashboardStats(ctx *gin.Context) {
	db := database.DB

	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx.Request.Context())

	count := func(dest *int64, model interface{}, conds ...interface{}) func() error {
		return func() error {
			q := db.WithContext(gctx).Model(model)
			if len(conds) > 0 {
				q = q.Where(conds[0], conds[1:]...)
			}
			return q.Count(dest).Error
		}
	}

	today := time.Now().Truncate(24 * time.Hour)

	g.Go(count(&stats.Organizations, &models.Organization{}, "is_active = ?", true))
	g.Go(count(&stats.Buildings, &models.Building{}, "is_active = ?", true))
	g.Go(count(&stats.Locations, &models.Location{}, "is_active = ?", true))
	g.Go(count(&stats.Users, &models.User{}, "status = ?", "ACTIVE"))
	g.Go(count(&stats.Inspections, &inspection.Record{}))
	g.Go(count(&stats.InspectionsToday, &inspection.Record{}, "inspection_date >= ?", today))
	g.Go(count(&stats.ActiveSubscriptions, &billing.Subscription{}, "status = ?", billing.SubscriptionActive))

	if err := g.Wait(); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to gather dashboard statistics",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
