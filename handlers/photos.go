// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/session"
)

// PhotoField is the multipart field carrying the upload
const PhotoField = "photo"

// multipartOverhead is the room left in the request body for part headers
// and boundaries on top of the photo limit
const multipartOverhead = 64 << 10

func photoTooLarge(w http.ResponseWriter, limit int64) {
	middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
		"Photo must be "+humanize.IBytes(uint64(limit))+" or smaller")
}

// UploadPhoto handles POST /wizard/photo
func (h *WizardHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	limit := h.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			photoTooLarge(w, limit)
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(PhotoField)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A photo file is required")
		return
	}
	defer file.Close()
	if header.Size > limit {
		photoTooLarge(w, limit)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read photo")
		return
	}
	if len(data) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Photo is empty")
		return
	}

	contentType, ok := imageType(data, header.Header.Get("Content-Type"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, "Only image files can be uploaded")
		return
	}

	rec, err := s.SetPhoto(contentType, header.Filename, data)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	slog.Info("photo uploaded", "photo_id", rec.PhotoID, "size", humanize.IBytes(uint64(rec.Size)))

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// imageType sniffs data and reports its image media type. A declared image
// type is trusted only when sniffing cannot tell.
func imageType(data []byte, declared string) (string, bool) {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, true
	}

	if sniffed == "application/octet-stream" {
		declared, _, _ = mime.ParseMediaType(declared)
		if strings.HasPrefix(declared, "image/") {
			return declared, true
		}
	}
	return "", false
}

// GetPhoto handles GET /photos/{id}
func (h *WizardHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Photo(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Photo not found")
		return
	}

	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, "", p.UploadedAt, bytes.NewReader(p.Data))
}

// Download handles GET /wizard/download
func (h *WizardHandler) Download(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	p, err := s.Download()
	if err != nil {
		writeSessionError(w, err)
		return
	}

	name := session.DownloadName(p, time.Now())
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, "", p.UploadedAt, bytes.NewReader(p.Data))
}
