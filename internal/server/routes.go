// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lore-dev/lore/internal/rag"
	"github.com/lore-dev/lore/internal/store"
	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Upload and content routes handle raw multipart/binary bodies, so they
	// bypass huma and register straight on the router.
	s.router.Post("/api/v1/upload", s.handleUpload)
	s.router.Get("/api/v1/users/{userId}/files/{fileId}/content", s.handleFileContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "ask-question",
		Method:      http.MethodPost,
		Path:        "/api/v1/ask",
		Summary:     "Answer a question from the user's documents",
		Tags:        []string{"rag"},
	}, s.handleAsk)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-files",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/files",
		Summary:     "List a user's uploaded files",
		Tags:        []string{"files"},
	}, s.handleListFiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-file",
		Method:      http.MethodDelete,
		Path:        "/api/v1/files",
		Summary:     "Delete a file and all its chunks",
		Tags:        []string{"files"},
	}, s.handleDeleteFile)
}

// --- Request/Response types for huma ---

type askInput struct {
	Body struct {
		UserID string `json:"user_id" minLength:"1" doc:"Owner of the searched documents"`
		Text   string `json:"text" minLength:"1" doc:"The question to answer"`
		FileID string `json:"file_id,omitempty" doc:"Optional: restrict retrieval to one file"`
	}
}
type askOutput struct {
	Body rag.Answer
}

type listFilesInput struct {
	UserID string `path:"userId"`
}
type listFilesOutput struct {
	Body struct {
		Files []store.FileInfo `json:"files"`
	}
}

type deleteFileInput struct {
	Body struct {
		UserID string `json:"user_id" minLength:"1"`
		FileID string `json:"file_id" minLength:"1"`
	}
}
type deleteFileOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

// --- Handlers ---

func (s *Server) handleAsk(ctx context.Context, input *askInput) (*askOutput, error) {
	answer, err := s.services.Answerer.Answer(ctx, rag.Question{
		UserID: input.Body.UserID,
		Text:   input.Body.Text,
		FileID: input.Body.FileID,
	})
	if err != nil {
		return nil, humaError(err)
	}
	return &askOutput{Body: answer}, nil
}

func (s *Server) handleListFiles(ctx context.Context, input *listFilesInput) (*listFilesOutput, error) {
	files, err := s.services.Files.List(ctx, input.UserID)
	if err != nil {
		return nil, humaError(err)
	}
	out := &listFilesOutput{}
	out.Body.Files = files
	if out.Body.Files == nil {
		out.Body.Files = []store.FileInfo{}
	}
	return out, nil
}

func (s *Server) handleDeleteFile(ctx context.Context, input *deleteFileInput) (*deleteFileOutput, error) {
	info, err := s.services.Files.Delete(ctx, input.Body.UserID, input.Body.FileID)
	if err != nil {
		return nil, humaError(err)
	}

	// Remove the stored upload too. Chunk deletion already succeeded, so a
	// missing file on disk is not an error.
	s.removeUpload(info.Filename)

	out := &deleteFileOutput{}
	out.Body.Message = "File deleted successfully"
	return out, nil
}

// humaError converts a service error into a huma status error using the
// error-code-to-status mapping.
func humaError(err error) error {
	return huma.NewError(loreerr.HTTPStatus(err), err.Error())
}
