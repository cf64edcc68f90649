package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"fantamorto/e2e/fakes"
	notifmodels "fantamorto/internal/notification/models"
	runner "fantamorto/internal/pipeline"
	"fantamorto/internal/roster/models"
)

// TestContext is what the steps need from the scenario world.
type TestContext interface {
	SetAdmin(chatID string)
	WriteTeam(team, owner, chatID string, anyDeath bool, members []string) error
	Run(ctx context.Context) error
	Person(ctx context.Context, name string) (models.Person, error)
	Outbox(ctx context.Context) ([]notifmodels.Job, error)
	History(ctx context.Context) ([]notifmodels.HistoryEntry, error)
	KnowledgeBase() *fakes.Wikidata
	Chats() *fakes.Telegram
	RunError() error
}

// RegisterSteps registers the pipeline step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &pipelineSteps{tc: tc}

	ctx.Step(`^the admin chat is "([^"]*)"$`, s.adminChatIs)
	ctx.Step(`^the knowledge base knows:$`, s.knowledgeBaseKnows)
	ctx.Step(`^the knowledge base is unreachable$`, s.knowledgeBaseUnreachable)
	ctx.Step(`^"([^"]*)" is alive in the knowledge base$`, s.isAlive)
	ctx.Step(`^"([^"]*)" dies on "([^"]*)"$`, s.dies)
	ctx.Step(`^the team "([^"]*)" owned by "([^"]*)" with chat "([^"]*)" lists:$`, s.teamLists)
	ctx.Step(`^the team "([^"]*)" owned by "([^"]*)" with chat "([^"]*)" follows every death and lists:$`, s.anyDeathTeamLists)

	ctx.Step(`^the pipeline runs$`, s.pipelineRuns)

	ctx.Step(`^the run succeeds$`, s.runSucceeds)
	ctx.Step(`^the run is aborted$`, s.runAborted)
	ctx.Step(`^"([^"]*)" is recorded as dead on "([^"]*)"$`, s.recordedAsDead)
	ctx.Step(`^chat "([^"]*)" received (\d+) messages? containing "([^"]*)"$`, s.chatReceived)
	ctx.Step(`^(\d+) messages? (?:was|were) sent in total$`, s.sentInTotal)
	ctx.Step(`^the outbox is empty$`, s.outboxEmpty)
	ctx.Step(`^the history holds (\d+) delivered entries$`, s.historyDelivered)
}

type pipelineSteps struct {
	tc TestContext
}

func (s *pipelineSteps) adminChatIs(ctx context.Context, chatID string) error {
	s.tc.SetAdmin(chatID)
	return nil
}

func (s *pipelineSteps) knowledgeBaseKnows(ctx context.Context, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("table needs a header and at least one row")
	}
	cols := make(map[string]int)
	for i, c := range table.Rows[0].Cells {
		cols[c.Value] = i
	}
	cell := func(row *messages.PickleTableRow, name string) string {
		if i, ok := cols[name]; ok && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value)
		}
		return ""
	}
	for _, row := range table.Rows[1:] {
		s.tc.KnowledgeBase().Put(cell(row, "name"), fakes.Entity{
			ID:    cell(row, "id"),
			Birth: cell(row, "birth"),
			Death: cell(row, "death"),
		})
	}
	return nil
}

func (s *pipelineSteps) knowledgeBaseUnreachable(ctx context.Context) error {
	s.tc.KnowledgeBase().SetUnreachable(true)
	return nil
}

func (s *pipelineSteps) isAlive(ctx context.Context, name string) error {
	return s.setDeath(name, "")
}

func (s *pipelineSteps) dies(ctx context.Context, name, date string) error {
	return s.setDeath(name, date)
}

func (s *pipelineSteps) setDeath(name, date string) error {
	if !s.tc.KnowledgeBase().SetDeath(name, date) {
		return fmt.Errorf("%q is not in the knowledge base", name)
	}
	return nil
}

func (s *pipelineSteps) teamLists(ctx context.Context, team, owner, chatID string, members *godog.DocString) error {
	return s.tc.WriteTeam(team, owner, chatID, false, lines(members.Content))
}

func (s *pipelineSteps) anyDeathTeamLists(ctx context.Context, team, owner, chatID string, members *godog.DocString) error {
	return s.tc.WriteTeam(team, owner, chatID, true, lines(members.Content))
}

func (s *pipelineSteps) pipelineRuns(ctx context.Context) error {
	return s.tc.Run(ctx)
}

func (s *pipelineSteps) runSucceeds(ctx context.Context) error {
	if err := s.tc.RunError(); err != nil {
		return fmt.Errorf("expected the run to succeed: %w", err)
	}
	return nil
}

func (s *pipelineSteps) runAborted(ctx context.Context) error {
	if err := s.tc.RunError(); !errors.Is(err, runner.ErrAborted) {
		return fmt.Errorf("expected an aborted run, got %v", err)
	}
	return nil
}

func (s *pipelineSteps) recordedAsDead(ctx context.Context, name, date string) error {
	p, err := s.tc.Person(ctx, name)
	if err != nil {
		return err
	}
	if p.DeathDate != date {
		return fmt.Errorf("%s: death date %q, want %q", name, p.DeathDate, date)
	}
	return nil
}

func (s *pipelineSteps) chatReceived(ctx context.Context, chatID string, count int, fragment string) error {
	got := 0
	for _, m := range s.tc.Chats().To(chatID) {
		if strings.Contains(m.Text, fragment) {
			got++
		}
	}
	if got != count {
		return fmt.Errorf("chat %s: %d messages containing %q, want %d (all: %v)",
			chatID, got, fragment, count, s.tc.Chats().To(chatID))
	}
	return nil
}

func (s *pipelineSteps) sentInTotal(ctx context.Context, count int) error {
	if got := len(s.tc.Chats().Sent()); got != count {
		return fmt.Errorf("%d messages sent, want %d", got, count)
	}
	return nil
}

func (s *pipelineSteps) outboxEmpty(ctx context.Context) error {
	jobs, err := s.tc.Outbox(ctx)
	if err != nil {
		return err
	}
	if len(jobs) != 0 {
		return fmt.Errorf("outbox holds %d jobs", len(jobs))
	}
	return nil
}

func (s *pipelineSteps) historyDelivered(ctx context.Context, count int) error {
	entries, err := s.tc.History(ctx)
	if err != nil {
		return err
	}
	got := 0
	for _, e := range entries {
		if e.Outcome == notifmodels.OutcomeDelivered {
			got++
		}
	}
	if got != count {
		return fmt.Errorf("%d delivered entries, want %d", got, count)
	}
	return nil
}

func lines(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
