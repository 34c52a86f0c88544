package annualreturn

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func assembled(t *testing.T) *AnnualReturn {
	t.Helper()
	store, org := seededStore(t)
	ar, err := NewAssembler(store, fixedClock).Assemble(context.Background(), org, 2024)
	require.NoError(t, err)
	return ar
}

func TestWriteCSV(t *testing.T) {
	ar := assembled(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ar))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(ar.Fields)+1)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"A1_CharityName", "A", "Charity name", "Harbour Lights Foundation", "organization"}, rows[1])

	for _, row := range rows[1:] {
		if row[0] == "B1_TotalIncome" {
			assert.Equal(t, "7350.00", row[3])
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	ar := assembled(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ar))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)

	// four metadata rows, a blank row, the header, then one row per field
	require.Len(t, rows, 6+len(ar.Fields))
	assert.Equal(t, []string{"Charity", "Harbour Lights Foundation"}, rows[0])
	assert.Equal(t, exportHeader, rows[5])
	assert.Equal(t, "A1_CharityName", rows[6][0])

	value, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2024", value)
}

func TestFilename(t *testing.T) {
	ar := assembled(t)
	assert.Equal(t, "annual-return-1123456-2024.xlsx", ar.Filename("xlsx"))

	ar.Organization.CharityNumber = ""
	assert.Equal(t, "annual-return-"+ar.Organization.ID.String()+"-2024.csv", ar.Filename("csv"))
}
