package models

import "sort"

// NotFoundName is stored as the resolved name of people the knowledge base
// has no entry for.
const NotFoundName = "Not found"

// NoticeState is the lifecycle of the global death announcement for a person.
type NoticeState string

const (
	NoticeNotApplicable NoticeState = "not_applicable"
	NoticePending       NoticeState = "pending"
	NoticeSent          NoticeState = "sent"
)

// Person is a tracked individual. OriginalName is the only guaranteed-unique
// key; StableID is best effort (two aliases may share it).
type Person struct {
	ID             int64
	OriginalName   string
	ResolvedName   string
	BirthDate      string // YYYY-MM-DD, empty when unknown
	DeathDate      string // YYYY-MM-DD, empty while alive
	ReferenceURL   string
	StableID       string
	GlobalNotified bool
}

// Deceased reports whether a death date has been recorded.
func (p Person) Deceased() bool { return p.DeathDate != "" }

// Found reports whether the person was matched to a knowledge base entry.
func (p Person) Found() bool { return p.StableID != "" }

// GlobalNotice derives the tri-state of the global announcement.
func (p Person) GlobalNotice() NoticeState {
	switch {
	case !p.Deceased():
		return NoticeNotApplicable
	case p.GlobalNotified:
		return NoticeSent
	default:
		return NoticePending
	}
}

// DisplayName prefers the knowledge base label and falls back to the name
// used in the team files.
func (p Person) DisplayName() string {
	if p.ResolvedName == "" || p.ResolvedName == NotFoundName {
		return p.OriginalName
	}
	return p.ResolvedName
}

// SameFacts compares the fields refreshed from the knowledge base.
func (p Person) SameFacts(o Person) bool {
	return p.ResolvedName == o.ResolvedName &&
		p.BirthDate == o.BirthDate &&
		p.DeathDate == o.DeathDate &&
		p.ReferenceURL == o.ReferenceURL &&
		p.StableID == o.StableID
}

// NotFoundPerson is the sentinel row for a name with no knowledge base match.
func NotFoundPerson(name string) Person {
	return Person{OriginalName: name, ResolvedName: NotFoundName}
}

// Team mirrors one team membership file.
type Team struct {
	ID                 int64
	Name               string
	OwnerName          string
	NotificationEmail  string
	NotificationChatID string
	NotifyOnAnyDeath   bool
}

// SameSettings compares the mutable fields of two teams.
func (t Team) SameSettings(o Team) bool {
	return t.OwnerName == o.OwnerName &&
		t.NotificationEmail == o.NotificationEmail &&
		t.NotificationChatID == o.NotificationChatID &&
		t.NotifyOnAnyDeath == o.NotifyOnAnyDeath
}

// HasAddress reports whether the team can be notified on any channel.
func (t Team) HasAddress() bool {
	return t.NotificationEmail != "" || t.NotificationChatID != ""
}

// Link is a team-person pair.
type Link struct {
	TeamID   int64
	PersonID int64
}

// Membership is a persisted link plus its per-team notification flag.
type Membership struct {
	TeamID       int64
	PersonID     int64
	TeamNotified bool
}

// Link drops the flag.
func (m Membership) Link() Link {
	return Link{TeamID: m.TeamID, PersonID: m.PersonID}
}

// TeamFile is one parsed team membership file.
type TeamFile struct {
	Source           string
	Name             string
	Owner            string
	Email            string
	ChatID           string
	NotifyOnAnyDeath bool
	Members          []string
}

// Team converts the file header into a team row without an ID.
func (f TeamFile) Team() Team {
	return Team{
		Name:               f.Name,
		OwnerName:          f.Owner,
		NotificationEmail:  f.Email,
		NotificationChatID: f.ChatID,
		NotifyOnAnyDeath:   f.NotifyOnAnyDeath,
	}
}

// Roster is the current truth read from the team files, keyed by team name.
type Roster struct {
	Teams map[string]TeamFile
}

// Empty reports whether no team (or no member) was found.
func (r Roster) Empty() bool {
	return len(r.Names()) == 0
}

// Names returns every member name across all teams, sorted and deduplicated.
func (r Roster) Names() []string {
	seen := make(map[string]struct{})
	for _, t := range r.Teams {
		for _, m := range t.Members {
			seen[m] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NameSet is Names as a set.
func (r Roster) NameSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range r.Teams {
		for _, m := range t.Members {
			set[m] = struct{}{}
		}
	}
	return set
}
