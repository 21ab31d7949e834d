package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// Backend records every successful call of the wrapped backend. Recording
// failures are logged and never fail the call.
type Backend struct {
	next   viewer.Backend
	store  *Store
	logger *zap.Logger
}

var _ viewer.Backend = (*Backend)(nil)

// Wrap returns a Backend recording into store.
func Wrap(next viewer.Backend, store *Store, logger *zap.Logger) *Backend {
	logger = logging.OrNop(logger)
	return &Backend{next: next, store: store, logger: logger.Named("history")}
}

// Upload forwards to the wrapped backend and records the result.
func (b *Backend) Upload(ctx context.Context, name string, data []byte) (*viewer.UploadResult, error) {
	res, err := b.next.Upload(ctx, name, data)
	if err != nil {
		return nil, err
	}

	_, rerr := b.store.RecordUpload(ctx, Upload{
		FileName:    name,
		ContentHash: Hash(data),
		Size:        int64(len(data)),
		ContractID:  res.ContractID,
		Status:      res.Status,
	})
	if rerr != nil {
		b.logger.Warn("recording upload", zap.String("contract_id", res.ContractID), zap.Error(rerr))
	}
	return res, nil
}

// Ask forwards to the wrapped backend and records the answer as returned,
// before any placeholder substitution.
func (b *Backend) Ask(ctx context.Context, question string, contractID *string) (*viewer.AskResult, error) {
	res, err := b.next.Ask(ctx, question, contractID)
	if err != nil {
		return nil, err
	}

	q := Question{Question: question, Answer: res.Answer, MatchedChunk: res.MatchedChunk}
	if contractID != nil {
		q.ContractID = *contractID
	}
	if _, rerr := b.store.RecordQuestion(ctx, q); rerr != nil {
		b.logger.Warn("recording question", zap.String("contract_id", q.ContractID), zap.Error(rerr))
	}
	return res, nil
}

// Hash returns the SHA-256 hex digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
