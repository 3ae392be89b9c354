package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Name", "Path", "Created")

	assert.Equal(t, []string{"Name", "Path", "Created"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("docs", "/docs", "2026-01-02")
	table.AddRow("media", "/media", "2026-01-03")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"docs", "/docs", "2026-01-02"}, rows[0])
	assert.Equal(t, []string{"media", "/media", "2026-01-03"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Name", "Value")
	table.AddRow("key1", "value1")
	table.AddRow("key2", "value2")

	var buf bytes.Buffer
	err := PrintTable(&buf, table)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "VALUE")
	assert.Contains(t, output, "key1")
	assert.Contains(t, output, "value1")
	assert.Contains(t, output, "key2")
	assert.Contains(t, output, "value2")
}

func TestSimpleTable(t *testing.T) {
	pairs := [][2]string{
		{"Status", "healthy"},
		{"Uptime", "3h 12m 5s"},
	}

	var buf bytes.Buffer
	err := SimpleTable(&buf, pairs)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Status")
	assert.Contains(t, output, "healthy")
	assert.Contains(t, output, "Uptime")
	assert.Contains(t, output, "3h 12m 5s")
}
