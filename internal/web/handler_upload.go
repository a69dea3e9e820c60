package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// allowedImageTypes are the sniffed types accepted for meal photos.
// http.DetectContentType has no WebP signature, so isWebP covers that one.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a RIFF container tagged "WEBP".
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// handleScanMeal recognizes food in an uploaded photo. The photo is not
// stored; the client confirms the items by posting them to /api/meals.
func (s *Server) handleScanMeal(c *gin.Context) {
	// Room for multipart framing on top of the image itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize+1<<20)

	header, err := c.FormFile("image")
	if err != nil {
		apiError(c, http.StatusBadRequest, "image file required")
		return
	}
	if header.Size > maxPhotoSize {
		apiError(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to read file")
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		apiError(c, http.StatusBadRequest, "unsupported image format")
		return
	}
	s.logger.Info("food scan started", "mime_type", mimeType, "bytes", len(imageData))

	c.JSON(http.StatusOK, s.coach.ScanFood(c.Request.Context(), imageData, mimeType))
}
