package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackzampolin/docuscribe/internal/defra"
	"github.com/jackzampolin/docuscribe/internal/types"
)

// Collection is the DefraDB collection documents are read from.
const Collection = "Document"

var (
	summaryFields  = []string{"_docID", "title", "hashtags", "updated_at"}
	documentFields = []string{"_docID", "title", "hashtags", "updated_at", "words", "pages_json"}
)

// defraRow is one Document row as returned by GraphQL.
type defraRow struct {
	ID        string   `json:"_docID"`
	Title     string   `json:"title"`
	Hashtags  []string `json:"hashtags"`
	UpdatedAt string   `json:"updated_at"`
	Words     []string `json:"words"`
	PagesJSON string   `json:"pages_json"`
}

// DefraStore reads documents from a DefraDB Document collection.
type DefraStore struct {
	client *defra.Client
}

var _ Store = (*DefraStore)(nil)

// NewDefraStore creates a store backed by client.
func NewDefraStore(client *defra.Client) *DefraStore {
	return &DefraStore{client: client}
}

// Get fetches a document by _docID. Ids DefraDB could never have issued
// are reported as not found without a round trip.
func (s *DefraStore) Get(ctx context.Context, id string) (*types.Document, error) {
	if err := defra.ValidateID(id); err != nil {
		return nil, ErrNotFound
	}

	rows, err := s.query(ctx, defra.NewQuery(Collection).Filter("_docID", id).Fields(documentFields...))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].document()
}

// List returns summaries ordered by updated_at descending.
func (s *DefraStore) List(ctx context.Context, limit, offset int) ([]types.Summary, error) {
	q := defra.NewQuery(Collection).
		Fields(summaryFields...).
		OrderBy("updated_at", "DESC").
		Limit(max(limit, 0)).
		Offset(max(offset, 0))

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]types.Summary, 0, len(rows))
	for _, r := range rows {
		updated, err := parseDefraTime(r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", r.ID, err)
		}
		tags := r.Hashtags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, types.Summary{ID: r.ID, Name: r.Title, Hashtags: tags, UpdatedAt: updated})
	}
	return out, nil
}

// HealthCheck pings DefraDB.
func (s *DefraStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *DefraStore) query(ctx context.Context, q *defra.QueryBuilder) ([]defraRow, error) {
	resp, err := q.Execute(ctx, s.client)
	if err != nil {
		return nil, err
	}
	if msg := resp.Error(); msg != "" {
		return nil, fmt.Errorf("defra query failed: %s", msg)
	}
	var rows []defraRow
	if err := resp.Rows(Collection, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r defraRow) document() (*types.Document, error) {
	updated, err := parseDefraTime(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", r.ID, err)
	}
	doc := &types.Document{
		ID:        r.ID,
		Title:     r.Title,
		Hashtags:  r.Hashtags,
		UpdatedAt: updated,
		Words:     r.Words,
	}
	if doc.Words == nil {
		doc.Words = []string{}
	}
	if r.PagesJSON != "" {
		if err := json.Unmarshal([]byte(r.PagesJSON), &doc.Pages); err != nil {
			return nil, fmt.Errorf("document %s: invalid pages_json: %w", r.ID, err)
		}
		doc.Pages = normalizePages(doc.Pages)
	}
	return doc, nil
}

func parseDefraTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid updated_at %q: %w", s, err)
	}
	return t.UTC(), nil
}
