package notification

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"fantamorto/internal/roster/models"
)

var baudo = models.Person{
	OriginalName: "Pippo Baudo",
	ResolvedName: "Pippo Baudo",
	BirthDate:    "1936-06-07",
	DeathDate:    "2025-08-16",
	ReferenceURL: "http://www.wikidata.org/entity/Q1",
	StableID:     "Q1",
}

func TestComposerGolden(t *testing.T) {
	g := goldie.New(t)
	c := NewComposer("it")

	g.Assert(t, "admin_death", []byte(c.AdminDeath(baudo, []string{"Lupi", "Orsi"})))

	m := c.TeamDeath("Lupi", baudo, []string{"Lupi", "Orsi"})
	g.Assert(t, "team_death_message", []byte(m.Text))
	g.Assert(t, "team_death_email", []byte(m.EmailBody))
	assert.Equal(t, "FantaMorto: Pippo Baudo is dead", m.Subject)

	noBirth := baudo
	noBirth.BirthDate = ""
	g.Assert(t, "death_without_age", []byte(c.Death(noBirth, nil).Text))
}

func TestComposerUpperCasesAccents(t *testing.T) {
	c := NewComposer("it")
	p := models.Person{OriginalName: "Raffaella Carrà", DeathDate: "2021-07-05"}
	assert.Contains(t, c.Death(p, nil).Text, "*RAFFAELLA CARRÀ*")
}

func TestComposerAdminNotices(t *testing.T) {
	c := NewComposer("xx-invalid-")
	assert.Equal(t, "*FANTAMORTO*\n\nIdentifier not found for: Nessuno", c.AdminNotFound("Nessuno"))
	assert.Equal(t, "*FANTAMORTO*\n\nrun aborted", c.AdminAlert("run aborted"))
}
