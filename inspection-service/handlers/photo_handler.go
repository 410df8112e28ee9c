package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"inspeksi-backend/inspection-service/services"
	"inspeksi-backend/shared/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 10 MB per photo
const maxPhotoSize = 10 << 20

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoHandler attaches uploaded photos to inspection records
type PhotoHandler struct {
	storage *services.MinIOService
}

func NewPhotoHandler(storage *services.MinIOService) *PhotoHandler {
	return &PhotoHandler{storage: storage}
}

// UploadPhoto attaches a photo to an owned inspection record
// @Summary Upload an inspection photo
// @Description Stores the photo in object storage and appends its key to the record
// @Tags inspections
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Inspection ID" format(uuid)
// @Param photo formData file true "Photo file (jpg, png, webp; max 10 MB)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated photo list"
// @Failure 400 {object} map[string]string "Invalid file"
// @Failure 404 {object} map[string]string "Inspection not found"
// @Router /inspections/{id}/photos [post]
func (h *PhotoHandler) UploadPhoto(ctx *gin.Context) {
	recordUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection ID format",
			"message": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	record, found := findOwnedRecord(db, ctx.GetInt("roleLevel"), userID, recordUUID)
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Inspection not found",
			"message": "Inspection with the given ID does not exist",
		})
		return
	}

	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing photo file",
			"message": "A multipart 'photo' field is required",
		})
		return
	}

	if fileHeader.Size > maxPhotoSize {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Photo too large",
			"message": "Photos may not exceed 10 MB",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedPhotoExtensions[ext] {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unsupported photo format",
			"message": "Allowed formats: jpg, jpeg, png, webp",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to read photo",
			"message": err.Error(),
		})
		return
	}
	defer file.Close()

	// Object name carries a timestamp so repeated uploads never collide
	objectName := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	contentType := fileHeader.Header.Get("Content-Type")

	objectKey, err := h.storage.UploadPhoto(ctx.Request.Context(), record.ID.String(), objectName, file, fileHeader.Size, contentType)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store photo",
			"message": err.Error(),
		})
		return
	}

	var photoURLs []string
	if len(record.PhotoURLs) > 0 {
		if err := json.Unmarshal(record.PhotoURLs, &photoURLs); err != nil {
			photoURLs = nil
		}
	}
	photoURLs = append(photoURLs, objectKey)

	updated, err := json.Marshal(photoURLs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update photo list",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&record).Update("photo_urls", updated).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update inspection",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Photo uploaded successfully",
		"data": gin.H{
			"inspection_id": record.ID,
			"photo_urls":    photoURLs,
		},
	})
}

// GetPhotoURL returns a temporary download URL for a stored photo
// @Summary Get a photo download URL
// @Tags inspections
// @Produce json
// @Param id path string true "Inspection ID" format(uuid)
// @Param key query string true "Stored object key"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Presigned URL"
// @Failure 404 {object} map[string]string "Inspection or photo not found"
// @Router /inspections/{id}/photos [get]
func (h *PhotoHandler) GetPhotoURL(ctx *gin.Context) {
	recordUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid inspection ID format",
			"message": err.Error(),
		})
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	db := database.DB

	record, found := findOwnedRecord(db, ctx.GetInt("roleLevel"), userID, recordUUID)
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Inspection not found",
			"message": "Inspection with the given ID does not exist",
		})
		return
	}

	objectKey := ctx.Query("key")

	// Only keys actually attached to the record may be resolved
	var photoURLs []string
	if len(record.PhotoURLs) > 0 {
		json.Unmarshal(record.PhotoURLs, &photoURLs)
	}
	attached := false
	for _, key := range photoURLs {
		if key == objectKey {
			attached = true
			break
		}
	}
	if !attached {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Photo not found",
			"message": "The photo is not attached to this inspection",
		})
		return
	}

	presigned, err := h.storage.PhotoURL(ctx.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to resolve photo URL",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url": presigned,
		},
	})
}
