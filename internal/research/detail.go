package research

import (
	"context"
	"errors"

	"github.com/vijay-prabhu/seobrief/internal/database"
)

// Detail is a stored run with its keywords and brief
type Detail struct {
	Run      *database.Run         `json:"run"`
	Keywords []database.RunKeyword `json:"keywords"`
	Brief    *database.Brief       `json:"brief,omitempty"`
}

// LoadDetail reads a run (by ID or unique prefix) with its keywords and brief
func LoadDetail(ctx context.Context, db *database.DB, id string) (*Detail, error) {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	keywords, err := db.ListRunKeywords(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	b, err := db.GetBrief(ctx, run.ID)
	if err != nil && !errors.Is(err, database.ErrBriefNotFound) {
		return nil, err
	}

	return &Detail{Run: run, Keywords: keywords, Brief: b}, nil
}
