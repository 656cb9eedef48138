package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	supabase "github.com/nedpals/supabase-go"
)

const defaultTable = "resumes"

// SupabaseStore keeps the resume in a Supabase table. The latest row wins;
// there is a single implicit "current resume".
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

type resumeRow struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSupabaseStore creates a SupabaseStore. Empty arguments fall back to the
// SUPABASE_URL and SUPABASE_KEY environment variables.
func NewSupabaseStore(supabaseURL, supabaseKey, table string) (*SupabaseStore, error) {
	if supabaseURL == "" {
		supabaseURL = os.Getenv("SUPABASE_URL")
	}
	if supabaseKey == "" {
		supabaseKey = os.Getenv("SUPABASE_KEY")
	}
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("supabase URL and key must be provided via config or SUPABASE_URL / SUPABASE_KEY env vars")
	}

	if table = strings.TrimSpace(table); table == "" {
		table = defaultTable
	}

	return &SupabaseStore{
		client: supabase.CreateClient(supabaseURL, supabaseKey),
		table:  table,
	}, nil
}

func (s *SupabaseStore) FullText(_ context.Context) (string, error) {
	var rows []resumeRow
	if err := s.client.DB.From(s.table).Select("*").Execute(&rows); err != nil {
		return "", fmt.Errorf("fetch resume rows: %w", err)
	}

	var latest *resumeRow
	for i := range rows {
		if latest == nil || rows[i].UpdatedAt.After(latest.UpdatedAt) {
			latest = &rows[i]
		}
	}

	if latest == nil {
		return "", nil
	}

	return strings.TrimSpace(latest.Content), nil
}
