package handlers

import (
	"fmt"
	"net/http"
	"time"

	"inspeksi-backend/shared/database"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/inspection"
	"inspeksi-backend/shared/utils/export"

	"github.com/gin-gonic/gin"
)

// ExportInspections streams the caller's inspections as a CSV download
// @Summary Export inspections to CSV
// @Description Inspectors export their own records; admins export everything.
// @Description Optional from/to query params bound the inspection date.
// @Tags inspections
// @Produce text/csv
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param location_id query string false "Filter by location ID"
// @Security BearerAuth
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} map[string]string "Invalid date bounds"
// @Failure 500 {object} map[string]string "Server error"
// @Router /inspections/export [get]
func ExportInspections(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	dbQuery := db.Model(&inspection.Record{}).
		Preload("Location").
		Preload("Location.Building").
		Preload("User").
		Order("inspection_date desc, inspection_time desc")

	if ctx.GetInt("roleLevel") < models.LevelAdmin {
		dbQuery = dbQuery.Where("user_id = ?", userID)
	}

	if from := ctx.Query("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid from date",
				"message": "from must be formatted as YYYY-MM-DD",
			})
			return
		}
		dbQuery = dbQuery.Where("inspection_date >= ?", fromDate)
	}
	if to := ctx.Query("to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid to date",
				"message": "to must be formatted as YYYY-MM-DD",
			})
			return
		}
		dbQuery = dbQuery.Where("inspection_date <= ?", toDate)
	}
	if locationID := ctx.Query("location_id"); locationID != "" {
		dbQuery = dbQuery.Where("location_id = ?", locationID)
	}

	var records []inspection.Record
	if err := dbQuery.Find(&records).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve inspections",
			"message": err.Error(),
		})
		return
	}

	data, err := export.InspectionsCSV(records)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to build CSV export",
			"message": err.Error(),
		})
		return
	}

	fileName := fmt.Sprintf("inspections-%s.csv", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}
