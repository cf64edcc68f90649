package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fantamorto/internal/roster/models"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		file string
		want models.TeamFile
		ok   bool
	}{
		{
			file: "Lupi - Marco.csv",
			want: models.TeamFile{Name: "Lupi", Owner: "Marco"},
			ok:   true,
		},
		{
			file: "Lupi.csv",
			want: models.TeamFile{Name: "Lupi", Owner: DefaultOwner},
			ok:   true,
		},
		{
			file: "Lupi - Marco - marco@example.com - 12345.csv",
			want: models.TeamFile{Name: "Lupi", Owner: "Marco", Email: "marco@example.com", ChatID: "12345"},
			ok:   true,
		},
		{
			file: "Lupi - Marco - -100200 - all.xlsx",
			want: models.TeamFile{Name: "Lupi", Owner: "Marco", ChatID: "-100200", NotifyOnAnyDeath: true},
			ok:   true,
		},
		{
			file: "Lupi - Marco - something else.csv",
			want: models.TeamFile{Name: "Lupi", Owner: "Marco"},
			ok:   true,
		},
		{
			file: " - Marco.csv",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, ok := ParseFileName(tt.file)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			tt.want.Source = tt.file
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Lupi - Marco - 42.csv", "\ufeffPippo Baudo\n  Mina  \n\nPippo Baudo\nRaffaella Carrà,note\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden.csv", "Ignored")

	x := excelize.NewFile()
	require.NoError(t, x.SetCellValue("Sheet1", "A1", "Mina"))
	require.NoError(t, x.SetCellValue("Sheet1", "A2", "Ornella Vanoni"))
	require.NoError(t, x.SetCellValue("Sheet1", "B2", "ignored column"))
	require.NoError(t, x.SaveAs(filepath.Join(dir, "Orsi - Anna - anna@example.com - ALL.xlsx")))
	require.NoError(t, x.Close())

	roster, err := NewLoader(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, roster.Teams, 2)

	lupi := roster.Teams["Lupi"]
	assert.Equal(t, "42", lupi.ChatID)
	assert.Equal(t, []string{"Pippo Baudo", "Mina", "Raffaella Carrà"}, lupi.Members)

	orsi := roster.Teams["Orsi"]
	assert.True(t, orsi.NotifyOnAnyDeath)
	assert.Equal(t, "anna@example.com", orsi.Email)
	assert.Equal(t, []string{"Mina", "Ornella Vanoni"}, orsi.Members)

	assert.Equal(t, []string{"Mina", "Ornella Vanoni", "Pippo Baudo", "Raffaella Carrà"}, roster.Names())
}

func TestLoadMissingFolderIsEmpty(t *testing.T) {
	roster, err := NewLoader(filepath.Join(t.TempDir(), "nope")).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, roster.Empty())
}

func TestLoadDuplicateTeamKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Lupi - A.csv", "Mina\n")
	writeFile(t, dir, "Lupi - B.csv", "Pippo Baudo\n")

	roster, err := NewLoader(dir).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, roster.Teams, 1)
	assert.Equal(t, "A", roster.Teams["Lupi"].Owner)
}

func TestLoadUnreadableTeamFileFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Lupi - A.csv", "Mina\n")
	writeFile(t, dir, "Orsi - B.xlsx", "not a workbook")

	roster, err := NewLoader(dir).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Orsi - B.xlsx")
	assert.True(t, roster.Empty())
}
