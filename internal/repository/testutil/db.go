package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/mailblocks/pkg/blocks"
)

// TemplateColumns is the column order of the templates table as selected by the repository
var TemplateColumns = []string{
	"id", "name", "subject", "blocks", "background_color", "document_background_color",
	"padding", "use_sections", "sections", "created_at", "updated_at",
}

// SetupMockDB creates a regexp-matching sqlmock connection. The returned cleanup closes it.
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	return db, mock, func() { db.Close() }
}

// TemplateRows builds result rows for documents, JSON columns encoded the way they are stored
func TemplateRows(t *testing.T, docs ...*blocks.Document) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows(TemplateColumns)
	for _, doc := range docs {
		blocksJSON, err := doc.Blocks.Value()
		require.NoError(t, err)
		sectionsJSON, err := doc.Sections.Value()
		require.NoError(t, err)

		rows.AddRow(
			doc.ID, doc.Name, doc.Subject, blocksJSON,
			doc.BackgroundColor, doc.DocumentBackgroundColor, doc.Padding,
			doc.UseSections, sectionsJSON, doc.CreatedAt, doc.UpdatedAt,
		)
	}
	return rows
}
