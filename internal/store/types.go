// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package store

// ChunkMetadata travels with every stored chunk. All chunks of one file carry
// identical values for everything except ChunkIndex.
type ChunkMetadata struct {
	UserID      string            `json:"user_id"`
	FileID      string            `json:"file_id"`
	Filename    string            `json:"filename"`
	ChunkIndex  int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	Timestamp   string            `json:"timestamp"` // RFC 3339
	Extra       map[string]string `json:"extra,omitempty"`
}

// Chunk is the atomic stored unit: one span of document text with its
// embedding. IDs are caller-supplied ({file_id}_chunk_{index}) and unique.
type Chunk struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata ChunkMetadata
}

// SearchResult is one similarity-ranked hit. Score is cosine similarity in
// [-1, 1]; higher means more similar.
type SearchResult struct {
	Text     string
	Metadata ChunkMetadata
	Score    float64
}

// FileInfo is the registry view of a file, derived from any one of its
// chunks' metadata.
type FileInfo struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	UploadTime  string `json:"upload_time"`
	TotalChunks int    `json:"total_chunks"`
}
