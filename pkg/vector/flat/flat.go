// Package flat provides an exact vector driver: cosine similarity computed
// as L2-normalization followed by inner product over every stored vector.
//
// The index is persisted as two artifacts kept in lock-step, a binary vector
// file and a JSON metadata file (dimension, ids, texts). Both are replaced
// atomically via write-to-temp-then-rename, vectors first and metadata last,
// so a partial failure never leaves vectors observable without matching
// metadata.
package flat

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/contractminer/contractminer/pkg/logger"
	"github.com/contractminer/contractminer/pkg/vector"
)

const (
	vecSuffix  = ".vec"
	metaSuffix = ".meta.json"
)

// FlatDriver implements vector.Driver with exhaustive inner-product search.
type FlatDriver struct {
	mu     sync.RWMutex
	path   string
	dim    int
	ids    []string
	texts  []string
	vecs   [][]float32 // stored L2-normalized
	logger *slog.Logger
}

// Config holds configuration for the flat driver.
type Config struct {
	// Path is the artifact path prefix; the driver writes <Path>.vec and
	// <Path>.meta.json next to each other.
	Path string
}

type metadata struct {
	Dimension int      `json:"dimension"`
	IDs       []string `json:"ids"`
	Texts     []string `json:"texts"`
}

// NewFlatDriver creates a flat driver, reloading any existing artifacts at
// the configured path. With no artifacts present the index starts empty and
// the dimension is fixed by the first Add.
func NewFlatDriver(c Config, log *slog.Logger) (*FlatDriver, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("artifact path is required")
	}

	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact directory: %w", err)
		}
	}

	d := &FlatDriver{
		path:   c.Path,
		logger: logger.OrNop(log),
	}

	if err := d.load(); err != nil {
		return nil, err
	}

	d.logger.Info("flat vector driver initialized",
		"path", c.Path,
		"documents", len(d.ids),
		"dimensions", d.dim,
	)

	return d, nil
}

// load restores the index from the metadata and vector artifacts. Metadata
// is authoritative: a vector file without metadata is ignored, matching the
// metadata-last persist ordering.
func (d *FlatDriver) load() error {
	metaBytes, err := os.ReadFile(d.path + metaSuffix)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading metadata artifact: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return fmt.Errorf("decoding metadata artifact: %w", err)
	}

	vecBytes, err := os.ReadFile(d.path + vecSuffix)
	if err != nil {
		return fmt.Errorf("reading vector artifact: %w", err)
	}

	vecs, dim, err := deserializeVectors(vecBytes)
	if err != nil {
		return fmt.Errorf("decoding vector artifact: %w", err)
	}

	if len(meta.IDs) != len(meta.Texts) {
		return fmt.Errorf("artifact mismatch: %d ids, %d texts", len(meta.IDs), len(meta.Texts))
	}
	// Metadata is authoritative. A crash between the vector rename and the
	// metadata rename leaves more vectors than ids; the surplus belongs to
	// the interrupted Add and is discarded on reload.
	if len(vecs) > len(meta.IDs) {
		d.logger.Warn("discarding surplus vectors from interrupted write",
			"vectors", len(vecs),
			"ids", len(meta.IDs),
		)
		vecs = vecs[:len(meta.IDs)]
	}
	if len(vecs) < len(meta.IDs) {
		return fmt.Errorf("artifact mismatch: %d vectors, %d ids", len(vecs), len(meta.IDs))
	}
	if dim != meta.Dimension {
		return fmt.Errorf("artifact mismatch: vector dimension %d, metadata dimension %d", dim, meta.Dimension)
	}

	d.dim = meta.Dimension
	d.ids = meta.IDs
	d.texts = meta.Texts
	d.vecs = vecs
	return nil
}

// Add appends documents and persists both artifacts. On any failure the
// in-memory arena and the on-disk artifacts are left as they were.
func (d *FlatDriver) Add(_ context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dim := d.dim
	if dim == 0 {
		dim = len(docs[0].Embedding)
		if dim == 0 {
			return fmt.Errorf("%w: empty embedding for chunk %s", vector.ErrDimensionMismatch, docs[0].ID)
		}
	}

	// Build the new arena without touching the current one.
	ids := make([]string, len(d.ids), len(d.ids)+len(docs))
	copy(ids, d.ids)
	texts := make([]string, len(d.texts), len(d.texts)+len(docs))
	copy(texts, d.texts)
	vecs := make([][]float32, len(d.vecs), len(d.vecs)+len(docs))
	copy(vecs, d.vecs)

	for _, doc := range docs {
		if len(doc.Embedding) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, index has %d", vector.ErrDimensionMismatch, doc.ID, len(doc.Embedding), dim)
		}
		ids = append(ids, doc.ID)
		texts = append(texts, doc.Text)
		vecs = append(vecs, normalize(doc.Embedding))
	}

	if err := persist(d.path, dim, ids, texts, vecs); err != nil {
		return err
	}

	d.dim = dim
	d.ids = ids
	d.texts = texts
	d.vecs = vecs

	d.logger.Debug("added documents to flat index",
		"count", len(docs),
		"total", len(d.ids),
	)

	return nil
}

// Query runs exhaustive inner-product search over the normalized vectors.
func (d *FlatDriver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.vecs) == 0 {
		return nil, nil
	}
	if len(embedding) != d.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", vector.ErrDimensionMismatch, len(embedding), d.dim)
	}

	query := normalize(embedding)

	type scored struct {
		idx   int
		score float32
	}
	candidates := make([]scored, len(d.vecs))
	for i, v := range d.vecs {
		candidates[i] = scored{idx: i, score: dot(query, v)}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]vector.QueryResult, 0, topK)
	for _, c := range candidates[:topK] {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:   d.ids[c.idx],
				Text: d.texts[c.idx],
			},
			Score: c.score,
		})
	}

	d.logger.Debug("queried flat index", "results", len(results))

	return results, nil
}

// Count returns the number of stored documents.
func (d *FlatDriver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ids), nil
}

// Dimensions returns the embedding dimension, or 0 before the first Add.
func (d *FlatDriver) Dimensions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dim
}

// Close releases resources held by the driver.
func (d *FlatDriver) Close() error {
	return nil
}

// persist writes the vector artifact then the metadata artifact, each via
// write-to-temp-then-rename. Metadata goes last so readers never observe
// vectors without matching metadata.
func persist(path string, dim int, ids, texts []string, vecs [][]float32) error {
	if err := atomicWrite(path+vecSuffix, serializeVectors(vecs, dim)); err != nil {
		return fmt.Errorf("persisting vector artifact: %w", err)
	}

	metaBytes, err := json.Marshal(metadata{Dimension: dim, IDs: ids, Texts: texts})
	if err != nil {
		return fmt.Errorf("encoding metadata artifact: %w", err)
	}
	if err := atomicWrite(path+metaSuffix, metaBytes); err != nil {
		return fmt.Errorf("persisting metadata artifact: %w", err)
	}

	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// serializeVectors encodes vectors as little-endian float32s with a
// dimension and count header.
func serializeVectors(vecs [][]float32, dim int) []byte {
	buf := make([]byte, 8+len(vecs)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(vecs)))
	off := 8
	for _, v := range vecs {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}

func deserializeVectors(b []byte) ([][]float32, int, error) {
	if len(b) < 8 {
		return nil, 0, fmt.Errorf("vector artifact too short: %d bytes", len(b))
	}
	dim := int(binary.LittleEndian.Uint32(b[0:]))
	count := int(binary.LittleEndian.Uint32(b[4:]))
	if len(b) != 8+count*dim*4 {
		return nil, 0, fmt.Errorf("vector artifact length %d does not match %d vectors of dimension %d", len(b), count, dim)
	}

	vecs := make([][]float32, count)
	off := 8
	for i := range vecs {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
			off += 4
		}
		vecs[i] = v
	}
	return vecs, dim, nil
}

// normalize returns an L2-normalized copy of v. A zero vector is copied
// unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := float32(math.Sqrt(sum))
	for i, f := range v {
		out[i] = f / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Ensure FlatDriver implements vector.Driver.
var _ vector.Driver = (*FlatDriver)(nil)
