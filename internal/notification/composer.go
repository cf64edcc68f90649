package notification

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fantamorto/internal/roster/models"
)

const (
	adminHeader   = "*FANTAMORTO*\n\n"
	unknownValue  = "unknown"
	noTeamsMarker = "none"
)

// Message is the content of one death announcement on both channels.
type Message struct {
	Text      string // Markdown, message channel
	Subject   string // email channel
	EmailBody string // plain text, email channel
}

// Composer renders notification content.
type Composer struct {
	upper cases.Caser
}

// NewComposer builds a composer that upper-cases names per locale rules.
func NewComposer(locale string) *Composer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Italian
	}
	return &Composer{upper: cases.Upper(tag)}
}

// Death renders the announcement for a person belonging to teams.
func (c *Composer) Death(p models.Person, teams []string) Message {
	facts := c.facts(p, teams)
	return Message{
		Text:      fmt.Sprintf("** † *%s* † **\n\n%s", c.upper.String(p.OriginalName), facts),
		Subject:   fmt.Sprintf("FantaMorto: %s is dead", p.OriginalName),
		EmailBody: fmt.Sprintf("† %s †\n\n%s", p.OriginalName, facts),
	}
}

// AdminDeath is the global announcement sent to the administrator.
func (c *Composer) AdminDeath(p models.Person, teams []string) string {
	return adminHeader + c.Death(p, teams).Text
}

// TeamDeath is the announcement addressed to one team.
func (c *Composer) TeamDeath(team string, p models.Person, teams []string) Message {
	m := c.Death(p, teams)
	m.Text = fmt.Sprintf("*FANTAMORTO - %s*\n%s", team, m.Text)
	return m
}

// AdminNotFound tells the administrator a roster name has no identifier.
func (c *Composer) AdminNotFound(name string) string {
	return adminHeader + "Identifier not found for: " + name
}

// AdminAlert wraps a free-text operational alert.
func (c *Composer) AdminAlert(text string) string {
	return adminHeader + text
}

func (c *Composer) facts(p models.Person, teams []string) string {
	var b strings.Builder
	b.WriteString("Date of birth: " + orUnknown(p.BirthDate) + "\n")
	b.WriteString("Date of death: " + orUnknown(p.DeathDate) + "\n")
	if age, ok := AgeAtDeath(p.BirthDate, p.DeathDate); ok {
		b.WriteString("Age at death: " + strconv.Itoa(age) + "\n")
	}
	b.WriteString("Link: " + orUnknown(p.ReferenceURL) + "\n")
	if len(teams) == 0 {
		b.WriteString("Teams: " + noTeamsMarker)
	} else {
		b.WriteString("Teams: " + strings.Join(teams, ", "))
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}
