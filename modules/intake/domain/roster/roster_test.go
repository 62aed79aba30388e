package roster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	headers := []string{"User ID", "PERSON_ID_EXTERNAL", "Group Grade", "Email", "Department"}
	rows := [][]string{
		{"1", "900001", "05", "ada@example.com", "Finance"},
		{"2", "900002", "MD", "grace@example.com", "Audit"},
		{"3", "", "004", "joan@example.com", "Tax"},
		// Duplicate primary key: first match wins.
		{"1", "900099", "09", "impostor@example.com", "Shadow"},
	}
	ix, err := NewIndex(headers, rows)
	require.NoError(t, err)
	return ix
}

func TestNewIndex_MissingColumn(t *testing.T) {
	_, err := NewIndex([]string{"User ID", "Group Grade"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "PERSON_ID_EXTERNAL")
}

func TestLookupGrade_PrimaryKey(t *testing.T) {
	ix := testIndex(t)
	found, grade := ix.LookupGrade("1")
	require.True(t, found)
	require.Equal(t, "05", grade)

	// The lookup key is normalized like the roster key.
	found, grade = ix.LookupGrade("00000002.0")
	require.True(t, found)
	require.Equal(t, "MD", grade)
}

func TestLookupGrade_AlternateFallback(t *testing.T) {
	ix := testIndex(t)
	found, grade := ix.LookupGrade("900002")
	require.True(t, found)
	require.Equal(t, "MD", grade)
}

func TestLookupGrade_NotFound(t *testing.T) {
	ix := testIndex(t)
	found, grade := ix.LookupGrade("424242")
	require.False(t, found)
	require.Equal(t, GradeUserNotFound, grade)
}

func TestLookupGrade_NilIndex(t *testing.T) {
	var ix *Index
	found, grade := ix.LookupGrade("1")
	require.True(t, found)
	require.Equal(t, GradeNotValidated, grade)
	require.Nil(t, ix.AttributeColumns())
}

func TestNewIndex_FirstMatchWins(t *testing.T) {
	ix := testIndex(t)
	e, ok := ix.LookupPrimary("1")
	require.True(t, ok)
	require.Equal(t, "Finance", e.Attributes["Department"])
}

func TestNewIndex_GradeNormalized(t *testing.T) {
	ix := testIndex(t)
	e, ok := ix.LookupPrimary("3")
	require.True(t, ok)
	require.Equal(t, "04", e.Grade)
	require.Equal(t, "04", e.Attributes[ColumnGroupGrade])
}

func TestAttributeColumns_DeclaredOrder(t *testing.T) {
	ix := testIndex(t)
	require.Equal(t, []string{"Group Grade", "Email", "Department"}, ix.AttributeColumns())
}
