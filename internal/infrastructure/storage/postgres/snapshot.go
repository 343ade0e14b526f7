package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"jobdesk/internal/core/entity"
)

// SnapshotCodec serializes archived-job snapshots, compressing payloads
// above a threshold with zstd. Small snapshots stay plain JSON so they
// remain inspectable in the database.
type SnapshotCodec struct {
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewSnapshotCodec creates a snapshot codec with a 10KB compression threshold.
func NewSnapshotCodec() (*SnapshotCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &SnapshotCodec{
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Encode serializes v, compressing when the JSON exceeds the threshold.
func (c *SnapshotCodec) Encode(v any) ([]byte, entity.SnapshotAlgo, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if len(raw) < c.compressThreshold {
		return raw, entity.SnapshotNone, nil
	}
	return c.encoder.EncodeAll(raw, nil), entity.SnapshotZstd, nil
}

// Decode deserializes a snapshot previously produced by Encode into out.
func (c *SnapshotCodec) Decode(data []byte, algo entity.SnapshotAlgo, out any) error {
	raw := data
	if algo == entity.SnapshotZstd {
		var err error
		raw, err = c.decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress snapshot: %w", err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return nil
}
