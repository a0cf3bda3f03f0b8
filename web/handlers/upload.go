package handlers

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"time"

	"deskhive.com/deskhive/infrastructure/filesystem"
	web "deskhive.com/deskhive/web/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadDocumentsHandler receives move-out paperwork (inspection photos,
// signed settlement forms) and stores it on R2 under the case's prefix.
func UploadDocumentsHandler(storage *filesystem.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		caseID := c.Param("id")

		if err := c.Request.ParseMultipartForm(50 << 20); err != nil {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
			return
		}

		form := c.Request.MultipartForm
		files := form.File["files"]

		uploaded := []gin.H{}

		for _, file := range files {
			ext := filepath.Ext(file.Filename)
			if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".pdf" {
				continue
			}

			src, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
				return
			}

			key := path.Join("termination-cases", caseID, uuid.NewString()+ext)
			contentType := file.Header.Get("Content-Type")
			err = storage.Upload(c.Request.Context(), key, src, contentType)
			src.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
				return
			}

			url, err := storage.SignedURL(c.Request.Context(), key, 24*time.Hour)
			if err != nil {
				c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
				return
			}

			uploaded = append(uploaded, gin.H{"key": key, "url": url})
		}

		c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{
			"message": fmt.Sprintf("%d files uploaded", len(uploaded)),
			"files":   uploaded,
		}))
	}
}
