package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcheck/internal/model"
)

// collectRows drains the row and error channels.
func collectRows(t *testing.T, rowCh <-chan model.RawRow, errCh <-chan error) ([]model.RawRow, error) {
	t.Helper()
	var rows []model.RawRow
	for row := range rowCh {
		rows = append(rows, row)
	}
	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	return rows, gotErr
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "Email,First Name,Company\nalice@acme.com,Alice,Acme\nbob@globex.com,Bob,Globex\n"

	header, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "First Name", "Company"}, header)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, []string{"alice@acme.com", "Alice", "Acme"}, rows[0].Cells)
	assert.Equal(t, 2, rows[1].Index)
	assert.False(t, rows[0].Malformed)
}

func TestStreamCSV_EmptyInput(t *testing.T) {
	_, _, _, err := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrEmptyInput))
}

func TestStreamCSV_BlankRowsSkipped(t *testing.T) {
	input := "\n  ,  \nemail,name\n\na@b.com,Alice\n , \nb@c.com,Bob\n"

	header, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "name"}, header)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@b.com", rows[0].Cells[0])
	assert.Equal(t, 2, rows[1].Index)
}

func TestStreamCSV_HeaderOnly(t *testing.T) {
	header, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader("email,name\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "name"}, header)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_MalformedRows(t *testing.T) {
	input := "email,name,company\na@b.com,Alice\nb@c.com,Bob,Globex,extra\nc@d.com,Carol,Initech\n"

	_, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Malformed)
	assert.True(t, rows[1].Malformed)
	assert.False(t, rows[2].Malformed)
}

func TestStreamCSV_QuotedFields(t *testing.T) {
	input := "email,company\n\"a@b.com\",\"Smith, Jones & Co\"\n\"b@c.com\",\"Line\nBreak Inc\"\n"

	_, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Smith, Jones & Co", rows[0].Cells[1])
	assert.Equal(t, "Line\nBreak Inc", rows[1].Cells[1])
}

func TestStreamCSV_CustomDelimiter(t *testing.T) {
	input := "email;name\na@b.com;Alice\n"

	header, rowCh, errCh, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "name"}, header)

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a@b.com", "Alice"}, rows[0].Cells)
}

func TestStreamCSV_HeaderTrimmed(t *testing.T) {
	input := "  Email , Name \na@b.com,Alice\n"

	header, _, _, err := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Name"}, header)
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("email\n")
	for i := 0; i < 10000; i++ {
		sb.WriteString("a@b.com\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, rowCh, errCh, err := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})
	require.NoError(t, err)

	cancel()

	for range rowCh { //nolint:revive // drain
	}
	var gotErr error
	for e := range errCh {
		gotErr = e
	}
	if gotErr != nil {
		assert.Contains(t, gotErr.Error(), "context cancelled")
	}
}
