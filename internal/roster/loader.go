package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"fantamorto/internal/roster/models"
	fmstrings "fantamorto/pkg/platform/strings"
)

// FileSeparator splits the fields of a team file name.
const FileSeparator = " - "

// DefaultOwner is used when the file name carries no owner.
const DefaultOwner = "N/A"

// AnyDeathMarker in a file name subscribes the team to every death.
const AnyDeathMarker = "ALL"

// Loader reads team membership files from a folder. Supported formats are
// .csv and .xlsx; the member names are the first column.
type Loader struct {
	folder string
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader for folder.
func NewLoader(folder string, opts ...LoaderOption) *Loader {
	l := &Loader{folder: folder, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every team file. A missing folder yields an empty roster. A
// team file that exists but cannot be read fails the whole load, so its
// members are never pruned.
func (l *Loader) Load(ctx context.Context) (models.Roster, error) {
	roster := models.Roster{Teams: make(map[string]models.TeamFile)}

	entries, err := os.ReadDir(l.folder)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.WarnContext(ctx, "teams folder does not exist", "folder", l.folder)
		return roster, nil
	}
	if err != nil {
		return roster, fmt.Errorf("read teams folder: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		tf, ok := ParseFileName(name)
		if !ok {
			l.logger.WarnContext(ctx, "skipping team file without a team name", "file", name)
			continue
		}
		if prev, dup := roster.Teams[tf.Name]; dup {
			l.logger.WarnContext(ctx, "duplicate team name, keeping first file",
				"team", tf.Name, "kept", prev.Source, "skipped", name)
			continue
		}

		path := filepath.Join(l.folder, name)
		var members []string
		if ext == ".xlsx" {
			members, err = readXLSX(path)
		} else {
			members, err = readCSV(path)
		}
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to read team file", "file", name, "error", err)
			return models.Roster{}, fmt.Errorf("read team file %s: %w", name, err)
		}
		tf.Members = fmstrings.DedupeNames(members)
		roster.Teams[tf.Name] = tf
	}

	l.logger.InfoContext(ctx, "roster loaded", "teams", len(roster.Teams), "people", len(roster.Names()))
	return roster, nil
}

// ParseFileName reads "Team - Owner[ - email][ - chatId][ - ALL].ext". A
// token containing "@" is the email, an optionally negative integer is the
// chat id and ALL (any case) subscribes the team to every death.
func ParseFileName(filename string) (models.TeamFile, bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(base, FileSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	tf := models.TeamFile{
		Source: filename,
		Name:   fmstrings.NormalizeName(parts[0]),
		Owner:  DefaultOwner,
	}
	if tf.Name == "" {
		return tf, false
	}
	if len(parts) > 1 && parts[1] != "" {
		tf.Owner = parts[1]
	}
	for _, part := range parts[min(2, len(parts)):] {
		switch {
		case strings.EqualFold(part, AnyDeathMarker):
			tf.NotifyOnAnyDeath = true
		case strings.Contains(part, "@"):
			tf.Email = part
		case isChatID(part):
			tf.ChatID = part
		}
	}
	return tf, true
}

func isChatID(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var members []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > 0 {
			members = append(members, strings.TrimPrefix(rec[0], "\ufeff"))
		}
	}
	return members, nil
}

func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			members = append(members, row[0])
		}
	}
	return members, nil
}
