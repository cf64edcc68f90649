// Package sheets turns the league spreadsheet into team membership files.
package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	fmstrings "fantamorto/pkg/platform/strings"
)

// HeaderMarker is the cell that heads every team's player column.
const HeaderMarker = "Giocatore"

// UnknownOwner is used when no owner row sits above a team column.
const UnknownOwner = "Unknown"

// ErrNoHeader means the sheet has no HeaderMarker cell.
var ErrNoHeader = errors.New("header " + HeaderMarker + " not found")

// Team is one player column of the sheet.
type Team struct {
	Name    string
	Owner   string
	Players []string
}

// ParseSheet finds the first row containing HeaderMarker. Each marker cell
// opens a team: the non-empty cells above it are team name then owner, the
// cells below it are players. Numeric cells (prices, points) are dropped.
func ParseSheet(rows [][]string) ([]Team, error) {
	header := -1
	for i, row := range rows {
		if indexOf(row, HeaderMarker) >= 0 {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrNoHeader
	}

	var teams []Team
	for col, cell := range rows[header] {
		if strings.TrimSpace(cell) != HeaderMarker {
			continue
		}
		var meta []string
		for r := 0; r < header; r++ {
			if v := cellAt(rows[r], col); v != "" {
				meta = append(meta, v)
			}
		}
		if len(meta) == 0 {
			continue
		}
		t := Team{Name: meta[0], Owner: UnknownOwner}
		if len(meta) > 1 {
			t.Owner = meta[1]
		}
		for r := header + 1; r < len(rows); r++ {
			v := cellAt(rows[r], col)
			if v == "" || isNumber(v) {
				continue
			}
			t.Players = append(t.Players, v)
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func indexOf(row []string, value string) int {
	for i, c := range row {
		if strings.TrimSpace(c) == value {
			return i
		}
	}
	return -1
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Contact is the notification addresses of one team.
type Contact struct {
	Email  string
	ChatID string
}

// Contacts is keyed by folded owner and team name.
type Contacts map[[2]string]Contact

// Lookup finds the contact for a team and owner, ignoring case.
func (c Contacts) Lookup(team, owner string) (Contact, bool) {
	v, ok := c[[2]string{fmstrings.FoldKey(owner), fmstrings.FoldKey(team)}]
	return v, ok
}

// ParseContacts reads the notifications CSV: Persona, squadra, email,
// telegram_chat_id. The first row for a pair wins.
func ParseContacts(r io.Reader) (Contacts, error) {
	records, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read contacts: %w", err)
	}
	out := make(Contacts)
	for _, rec := range records {
		key := [2]string{fmstrings.FoldKey(rec["persona"]), fmstrings.FoldKey(rec["squadra"])}
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = Contact{
			Email:  strings.TrimSpace(rec["email"]),
			ChatID: strings.TrimSpace(rec["telegram_chat_id"]),
		}
	}
	return out, nil
}

// Corrections maps a folded downloaded name to its corrected spelling.
type Corrections map[string]string

// Apply returns the corrected name, or name itself.
func (c Corrections) Apply(name string) string {
	if v, ok := c[fmstrings.FoldKey(name)]; ok {
		return v
	}
	return name
}

// ParseCorrections reads the corrections CSV: Nome scaricato, Nome corretto.
func ParseCorrections(r io.Reader) (Corrections, error) {
	records, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	out := make(Corrections)
	for _, rec := range records {
		from, to := strings.TrimSpace(rec["nome scaricato"]), strings.TrimSpace(rec["nome corretto"])
		if from == "" || to == "" {
			continue
		}
		out[fmstrings.FoldKey(from)] = to
	}
	return out, nil
}

// readTable parses a headed CSV into rows keyed by lower-cased header.
func readTable(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

var unsafeFileChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// FileName builds "Team - Owner[ - email][ - chat].csv" without characters
// file systems reject.
func FileName(team, owner string, c Contact) string {
	parts := []string{team, owner}
	if c.Email != "" {
		parts = append(parts, c.Email)
	}
	if c.ChatID != "" {
		parts = append(parts, c.ChatID)
	}
	return strings.TrimSpace(unsafeFileChars.ReplaceAllString(strings.Join(parts, " - "), "")) + ".csv"
}
