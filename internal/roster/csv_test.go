package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows_CamelCaseHeaders(t *testing.T) {
	data := strings.Join([]string{
		"memberName,guestNames,checkIn,checkInTime,checkOut,checkOutTime,sourceRow",
		"Ann Lee,Jane Smith,y,2:30 PM,,,12",
	}, "\n")

	rows, err := readRows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "Ann Lee", r.MemberName)
	assert.Equal(t, "Jane Smith", r.GuestNames)
	assert.Equal(t, "y", r.CheckIn)
	assert.Equal(t, "2:30 PM", r.CheckInTime)
	assert.Equal(t, "", r.CheckOut)
	require.NotNil(t, r.SourceRow)
	assert.Equal(t, int64(12), *r.SourceRow)
}

func TestReadRows_HumanHeaders(t *testing.T) {
	data := strings.Join([]string{
		`"Member Name","Guest Names","Check In","Check In Time","Check Out","Check Out Time"`,
		"Ann Lee,\"Jane Smith and John Doe\",y,,n,",
		"Max Stone,Bob Jones,,,y,1:45 PM",
	}, "\n")

	rows, err := readRows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Jane Smith and John Doe", rows[0].GuestNames)
	assert.Equal(t, "1:45 PM", rows[1].CheckOutTime)

	// No source-row column: rows numbered in file order.
	require.NotNil(t, rows[0].SourceRow)
	assert.Equal(t, int64(1), *rows[0].SourceRow)
	require.NotNil(t, rows[1].SourceRow)
	assert.Equal(t, int64(2), *rows[1].SourceRow)
}

func TestReadRows_RaggedAndUnknownColumns(t *testing.T) {
	data := strings.Join([]string{
		"Member Name,Guest Names,Notes",
		"Ann Lee,Jane Smith,something else",
		"Max Stone", // short row
	}, "\n")

	rows, err := readRows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Smith", rows[0].GuestNames)
	assert.Equal(t, "Max Stone", rows[1].MemberName)
	assert.Equal(t, "", rows[1].GuestNames)
}

func TestReadRows_EmptyInput(t *testing.T) {
	rows, err := readRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = readRows(strings.NewReader("memberName,guestNames\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	data := "guestNames\nJane Smith\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Smith", rows[0].GuestNames)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Member Name": "membername",
		"memberName":  "membername",
		"member_name": "membername",
		"CHECK-IN":    "checkin",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeHeader(in), "input %q", in)
	}
}

func TestReadRows_ExportHeadersRoundTrip(t *testing.T) {
	data := strings.Join([]string{
		"Member Name,Guest Name,Check In Y/N,Check In Time,Check Out Y/N,Check Out Time",
		"Ann Lee,Jane Smith,Y,02:30:00 PM,N,",
	}, "\n")

	rows, err := readRows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Smith", rows[0].GuestNames)
	assert.Equal(t, "Y", rows[0].CheckIn)
	assert.Equal(t, "N", rows[0].CheckOut)
	assert.Equal(t, "02:30:00 PM", rows[0].CheckInTime)
}
