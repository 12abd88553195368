package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, headers []string, rows ...[]any) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "Recipients", headers, rows))
	return buf.Bytes()
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "recipient_name", expected: "recipient_name"},
		{input: "  Recipient Name ", expected: "recipient_name"},
		{input: "RECIPIENT-TITLE", expected: "recipient_title"},
		{input: "Full \t - Name", expected: "full_name"},
		{input: "Họ Và Tên", expected: "họ_và_tên"},
		{input: "CHỨC VỤ", expected: "chức_vụ"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

func TestCheckUpload(t *testing.T) {
	data := workbook(t, []string{"recipient_name", "recipient_title"})

	assert.NoError(t, CheckUpload("list.XLSX", data))
	assert.ErrorIs(t, CheckUpload("list.csv", data), ErrUnsupportedExtension)
	assert.ErrorIs(t, CheckUpload("list.xlsx", nil), ErrEmptyFile)
	assert.ErrorIs(t, CheckUpload("list.xlsx", []byte("name,title\nA,B\n")), ErrInvalidWorkbook)
}

func TestReadRecipients(t *testing.T) {
	data := workbook(t,
		[]string{"Note", "Tên", "Chức vụ", "Danh xưng"},
		[]any{"vip", "Nguyen Van A", "Director", "Anh"},
		[]any{" ", " ", " ", " "},
		[]any{"", "Tran Thi B", "", ""},
	)

	recipients, err := ReadRecipients(data)
	require.NoError(t, err)
	require.Len(t, recipients, 3)

	assert.Equal(t, Recipient{Number: 2, Salutation: "Anh", Name: "Nguyen Van A", Title: "Director"}, recipients[0])

	assert.Equal(t, 3, recipients[1].Number)
	assert.True(t, recipients[1].Blank())

	assert.Equal(t, 4, recipients[2].Number)
	assert.False(t, recipients[2].Blank())
	assert.Equal(t, []string{ColumnTitle}, recipients[2].Missing())
}

func TestReadRecipients_MissingColumns(t *testing.T) {
	data := workbook(t, []string{"recipient_salutation", "recipient_name"}, []any{"Ông", "A"})

	_, err := ReadRecipients(data)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), ColumnTitle)
}

func TestReadRecipients_InvalidWorkbook(t *testing.T) {
	_, err := ReadRecipients([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestReadRecipients_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadRecipients(buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestWriteWorkbook(t *testing.T) {
	data := workbook(t, []string{"Title", "Attendees"}, []any{"Gala", 3}, []any{"Party", 0})

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Recipients"}, f.GetSheetList())

	rows, err := f.GetRows("Recipients")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Title", "Attendees"}, {"Gala", "3"}, {"Party", "0"}}, rows)
}
