package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"content-backend/internal/domains/post/model"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Posts"

var exportHeaders = []string{
	"ID", "Title", "Slug", "Category", "Tags", "Author",
	"Visible", "Featured", "PublishedAt", "MediaURL",
}

// Export writes every post, hidden ones included, as an xlsx workbook.
func (s *PostService) Export(ctx context.Context, w io.Writer) error {
	posts, err := s.repo.Find(ctx, &model.PostFilter{Sort: model.SortCreatedDesc}, nil)
	if err != nil {
		return model.NewStoreError("list posts", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range posts {
		published := ""
		if p.PublishedAt != nil {
			published = p.PublishedAt.UTC().Format(time.RFC3339)
		}
		row := []interface{}{
			p.ID.String(), p.Title, p.Slug, p.Category, strings.Join(p.Tags, ", "), p.AuthorName,
			p.Visible, p.Featured, published, p.MediaURL,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
