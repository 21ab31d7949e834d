package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/contractqa/internal/db"
)

// Store manages persistence of upload and question history.
type Store struct {
	db *db.DB
}

// NewStore creates a new history store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// RecordUpload saves an upload.
func (s *Store) RecordUpload(ctx context.Context, u Upload) (*Upload, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, file_name, content_hash, size, contract_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FileName, u.ContentHash, u.Size, u.ContractID, u.Status, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting upload: %w", err)
	}
	return &u, nil
}

// LatestUpload returns the most recent upload, or nil if there is none.
func (s *Store) LatestUpload(ctx context.Context) (*Upload, error) {
	uploads, err := s.ListUploads(ctx, ListFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	return &uploads[0], nil
}

// FindByHash returns the most recent upload of identical content, or nil.
func (s *Store) FindByHash(ctx context.Context, hash string) (*Upload, error) {
	var u Upload
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, content_hash, size, contract_id, status, created_at
		 FROM uploads WHERE content_hash = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, hash,
	).Scan(&u.ID, &u.FileName, &u.ContentHash, &u.Size, &u.ContractID, &u.Status, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding upload: %w", err)
	}
	return &u, nil
}

// ListUploads returns uploads, newest first. ContractID filters by contract.
func (s *Store) ListUploads(ctx context.Context, filter ListFilter) ([]Upload, error) {
	query := `SELECT id, file_name, content_hash, size, contract_id, status, created_at
		 FROM uploads WHERE 1=1`
	args := []interface{}{}

	if filter.ContractID != "" {
		query += " AND contract_id = ?"
		args = append(args, filter.ContractID)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.FileName, &u.ContentHash, &u.Size, &u.ContractID, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// RecordQuestion saves an answered question.
func (s *Store) RecordQuestion(ctx context.Context, q Question) (*Question, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, contract_id, question, answer, matched_chunk, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.ContractID, q.Question, q.Answer, q.MatchedChunk, q.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting question: %w", err)
	}
	return &q, nil
}

// ListQuestions returns questions, newest first.
func (s *Store) ListQuestions(ctx context.Context, filter ListFilter) ([]Question, error) {
	query := `SELECT id, contract_id, question, answer, matched_chunk, created_at
		 FROM questions WHERE 1=1`
	args := []interface{}{}

	if filter.ContractID != "" {
		query += " AND contract_id = ?"
		args = append(args, filter.ContractID)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.ContractID, &q.Question, &q.Answer, &q.MatchedChunk, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
