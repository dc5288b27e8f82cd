package vectorstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/models"
)

const (
	booksCollection = "books"
	upsertBatchSize = 128
	scrollLimit     = 10_000
)

var _ core.BookStore = (*QdrantStore)(nil)

// QdrantStore is the Qdrant BookStore. Book metadata lives in its own
// collection, chunks in one collection per provider table.
type QdrantStore struct {
	client   *qdrant.Client
	operator core.DistanceOperator
	pageSize uint64
	logger   *zap.Logger

	mu          sync.Mutex
	collections map[string]bool
	bookMu      sync.Mutex // serialises book get-or-create
}

type Config struct {
	Host     string
	Port     int
	APIKey   string
	Operator core.DistanceOperator
	PageSize int
	Logger   *zap.Logger
}

func NewQdrantStore(ctx context.Context, cfg Config) (*QdrantStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 256
	}
	if _, err := qdrantDistance(cfg.Operator); err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	s := &QdrantStore{
		client:      client,
		operator:    cfg.Operator,
		pageSize:    uint64(cfg.PageSize),
		logger:      cfg.Logger,
		collections: make(map[string]bool),
	}
	if err := s.healthCheckWithRetry(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("qdrant unreachable: %w", err)
	}
	if err := s.ensureCollection(ctx, booksCollection, 1, qdrant.Distance_Cosine, "url"); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 20 * time.Second

	operation := func() error {
		_, err := s.client.HealthCheck(ctx)
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, name string, dim int, distance qdrant.Distance, keywordFields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[name] {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: distance,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		for _, field := range keywordFields {
			_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
				CollectionName: name,
				FieldName:      field,
				FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			})
			if err != nil {
				return fmt.Errorf("failed to create index for field %s: %w", field, err)
			}
		}
		s.logger.Info("created qdrant collection", zap.String("collection", name), zap.Int("dim", dim))
	}
	s.collections[name] = true
	return nil
}

func (s *QdrantStore) collectionExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	known := s.collections[name]
	s.mu.Unlock()
	if known {
		return true, nil
	}
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

func (s *QdrantStore) FindBook(ctx context.Context, bookURL string) (*models.Book, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: booksCollection,
		Ids:            []*qdrant.PointId{qdrant.NewID(bookPointID(bookURL).String())},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	b := bookFromPayload(points[0].Payload)
	return &b, nil
}

func (s *QdrantStore) ListBooks(ctx context.Context) ([]models.Book, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: booksCollection,
		Limit:          qdrant.PtrOf(uint32(scrollLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll books: %w", err)
	}
	out := make([]models.Book, 0, len(points))
	for _, p := range points {
		out = append(out, bookFromPayload(p.Payload))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].URL < out[j].URL
	})
	return out, nil
}

func (s *QdrantStore) HasEmbeddings(ctx context.Context, bookURL, provider, table string) (bool, error) {
	exists, err := s.collectionExists(ctx, table)
	if err != nil || !exists {
		return false, err
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: table,
		Filter:         bookProviderFilter(bookURL, provider),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("count chunks: %w", err)
	}
	return n > 0, nil
}

// SaveBook upserts the chunks in batches. Qdrant has no transactions, so a
// failed batch triggers a delete of everything written for the book and
// provider.
func (s *QdrantStore) SaveBook(ctx context.Context, book *models.Book, table string, chunks []models.Chunk) (*models.Book, error) {
	if book == nil {
		return nil, errors.New("nil book")
	}
	stored, err := s.getOrCreateBook(ctx, book)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return stored, nil
	}

	distance, err := qdrantDistance(s.operator)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCollection(ctx, table, len(chunks[0].Embedding), distance, "book_url", "provider"); err != nil {
		return nil, err
	}

	provider := chunks[0].Provider
	has, err := s.HasEmbeddings(ctx, stored.URL, provider, table)
	if err != nil {
		return nil, err
	}
	if has {
		return stored, core.ErrAlreadyEmbedded
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, ch := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunkPointID(stored.URL, ch).String()),
			Vectors: qdrant.NewVectors(ch.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"book_url":  stored.URL,
				"title":     stored.Title,
				"author":    stored.Author,
				"page":      int64(ch.Page),
				"ordinal":   int64(ch.Ordinal),
				"chunk":     ch.Text,
				"chunk_len": int64(chunkLength(ch.Text)),
				"provider":  ch.Provider,
			}),
		})
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: table,
			Wait:           qdrant.PtrOf(true),
			Points:         points[start:end],
		})
		if err != nil {
			s.rollbackChunks(stored.URL, provider, table)
			return nil, fmt.Errorf("failed to upsert points: %w", err)
		}
	}
	return stored, nil
}

func (s *QdrantStore) rollbackChunks(bookURL, provider, table string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: table,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(bookProviderFilter(bookURL, provider)),
	})
	if err != nil {
		s.logger.Error("failed to remove partial chunks",
			zap.String("book_url", bookURL), zap.String("provider", provider), zap.Error(err))
	}
}

func (s *QdrantStore) getOrCreateBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	existing, err := s.FindBook(ctx, book.URL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := bookPointID(book.URL)
	stored := models.Book{
		ID:        bookNumericID(id),
		URL:       book.URL,
		Title:     book.Title,
		Author:    book.Author,
		PageCount: book.PageCount,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: booksCollection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(id.String()),
			Vectors: qdrant.NewVectors(1),
			Payload: qdrant.NewValueMap(map[string]any{
				"url":        stored.URL,
				"title":     stored.Title,
				"author":    stored.Author,
				"page_count": int64(stored.PageCount),
				"created_at": stored.CreatedAt.Format(time.RFC3339),
			}),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &stored, nil
}

// Search queries the provider's collection. The threshold and the length
// floor are part of the query and results are paged until exhausted, so
// there is no cap on the number of hits. Scores are converted to distances
// so callers see the same ordering as with pgvector.
func (s *QdrantStore) Search(ctx context.Context, sq core.SearchQuery) ([]models.SearchHit, error) {
	if sq.Operator != "" && sq.Operator != s.operator {
		return nil, fmt.Errorf("qdrant collections use %s distance, query asked for %s", s.operator, sq.Operator)
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("provider", sq.Provider),
			qdrant.NewRange("chunk_len", &qdrant.Range{Gt: qdrant.PtrOf(float64(core.MinChunkLength))}),
		},
	}
	threshold := scoreThreshold(s.operator, sq.Threshold)

	points, err := collectPages(ctx, s.pageSize, func(ctx context.Context, offset uint64) ([]*qdrant.ScoredPoint, error) {
		return s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: sq.Table,
			Query:          qdrant.NewQuery(sq.Vector...),
			Filter:         filter,
			ScoreThreshold: qdrant.PtrOf(threshold),
			Limit:          qdrant.PtrOf(s.pageSize),
			Offset:         qdrant.PtrOf(offset),
			WithPayload:    qdrant.NewWithPayload(true),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(points))
	for _, p := range points {
		h := hitFromPayload(p.Payload)
		if chunkLength(h.Chunk) <= core.MinChunkLength {
			continue
		}
		h.Distance = scoreToDistance(s.operator, p.Score)
		if h.Distance > sq.Threshold {
			continue
		}
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits, nil
}

// collectPages calls fetch with growing offsets until a page comes back
// shorter than pageSize.
func collectPages(ctx context.Context, pageSize uint64, fetch func(ctx context.Context, offset uint64) ([]*qdrant.ScoredPoint, error)) ([]*qdrant.ScoredPoint, error) {
	if pageSize == 0 {
		return nil, errors.New("page size must be positive")
	}
	var all []*qdrant.ScoredPoint
	for offset := uint64(0); ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if uint64(len(page)) < pageSize {
			return all, nil
		}
	}
}

// scoreThreshold is the Qdrant score bound equivalent to a maximum
// distance. Cosine and dot scores grow with similarity, euclid and
// manhattan scores are distances already.
func scoreThreshold(op core.DistanceOperator, maxDistance float64) float32 {
	switch op {
	case core.DistanceL1, core.DistanceL2:
		return float32(maxDistance)
	case core.DistanceInnerProduct:
		return float32(-maxDistance)
	default:
		return float32(1 - maxDistance)
	}
}

// chunkLength counts the characters of the trimmed chunk, as length(trim())
// does in Postgres.
func chunkLength(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

func qdrantDistance(op core.DistanceOperator) (qdrant.Distance, error) {
	switch op {
	case core.DistanceCosine, "":
		return qdrant.Distance_Cosine, nil
	case core.DistanceL1:
		return qdrant.Distance_Manhattan, nil
	case core.DistanceL2:
		return qdrant.Distance_Euclid, nil
	case core.DistanceInnerProduct:
		return qdrant.Distance_Dot, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrUnknownDistanceOperator, op)
}

// scoreToDistance maps a Qdrant score onto the pgvector distance of the same
// operator.
func scoreToDistance(op core.DistanceOperator, score float32) float64 {
	switch op {
	case core.DistanceL1, core.DistanceL2:
		return float64(score)
	case core.DistanceInnerProduct:
		return -float64(score)
	default:
		return 1 - float64(score)
	}
}

func bookProviderFilter(bookURL, provider string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("book_url", bookURL),
			qdrant.NewMatch("provider", provider),
		},
	}
}

func bookPointID(bookURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(bookURL))
}

func chunkPointID(bookURL string, ch models.Chunk) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%d|%d", bookURL, ch.Provider, ch.Page, ch.Ordinal)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
}

func bookNumericID(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]) >> 1)
}

func bookFromPayload(p map[string]*qdrant.Value) models.Book {
	b := models.Book{
		URL:       p["url"].GetStringValue(),
		Title:     p["title"].GetStringValue(),
		Author:    p["author"].GetStringValue(),
		PageCount: int(p["page_count"].GetIntegerValue()),
	}
	b.ID = bookNumericID(bookPointID(b.URL))
	if ts, err := time.Parse(time.RFC3339, p["created_at"].GetStringValue()); err == nil {
		b.CreatedAt = ts
	}
	return b
}

func hitFromPayload(p map[string]*qdrant.Value) models.SearchHit {
	return models.SearchHit{
		BookURL: p["book_url"].GetStringValue(),
		Title:   p["title"].GetStringValue(),
		Author:  p["author"].GetStringValue(),
		Page:    int(p["page"].GetIntegerValue()),
		Chunk:   p["chunk"].GetStringValue(),
	}
}
