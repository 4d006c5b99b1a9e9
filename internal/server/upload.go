// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// handleUpload accepts a multipart form with a "file" part and a "user_id"
// field, stores the upload on disk, and ingests it into the chunk store.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, loreerr.Wrap(err, loreerr.CodeServerRequestInvalid, "parsing multipart form"))
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, loreerr.New(loreerr.CodeServerRequestInvalid, "user_id is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, loreerr.Wrap(err, loreerr.CodeServerRequestInvalid, "file part is required"))
		return
	}
	defer file.Close()

	// filepath.Base guards against path traversal in the client filename.
	filename := filepath.Base(header.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		writeError(w, loreerr.New(loreerr.CodeServerRequestInvalid, "invalid filename"))
		return
	}

	path, err := s.saveUpload(file, filename)
	if err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.services.Ingestor.Ingest(r.Context(), userID, path, filename)
	if err != nil {
		// A failed ingest leaves no chunks behind; drop the upload as well.
		s.removeUpload(filename)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// handleFileContent serves the stored upload backing a user's file.
func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	fileID := chi.URLParam(r, "fileId")

	info, err := s.services.Files.Get(r.Context(), userID, fileID)
	if err != nil {
		writeError(w, err)
		return
	}

	path := filepath.Join(s.cfg.UploadsDir, info.Filename)
	f, err := os.Open(path)
	if err != nil {
		writeError(w, loreerr.Errorf(loreerr.CodeRAGFileNotFound, "file not found"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", mediaType(info.Filename))
	if _, err := io.Copy(w, f); err != nil {
		slog.Warn("streaming file content", "file_id", fileID, "error", err)
	}
}

func (s *Server) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadsDir, 0o755); err != nil {
		return "", loreerr.Wrap(err, loreerr.CodeServerInternalFailure, "creating uploads directory")
	}

	path := filepath.Join(s.cfg.UploadsDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", loreerr.Wrapf(err, loreerr.CodeServerInternalFailure, "creating upload file %s", path)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", loreerr.Wrapf(err, loreerr.CodeServerInternalFailure, "writing upload file %s", path)
	}

	return path, nil
}

func (s *Server) removeUpload(filename string) {
	path := filepath.Join(s.cfg.UploadsDir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("removing stored upload", "path", path, "error", err)
	}
}

// mediaType maps a filename to the Content-Type served for it.
func mediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

// writeError writes a JSON error response with the status mapped from the
// error's code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, loreerr.HTTPStatus(err), map[string]string{"error": err.Error()})
}
