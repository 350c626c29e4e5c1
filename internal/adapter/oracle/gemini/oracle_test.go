package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"tempest/internal/app/ports"
	"tempest/internal/domain/sim"
)

type fakeModel struct {
	errs    []error
	text    string
	calls   int
	prompts []string
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	if len(parts) > 0 {
		if t, ok := parts[0].(genai.Text); ok {
			f.prompts = append(f.prompts, string(t))
		}
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.text)}},
		}},
	}, nil
}

func testOracle(m *fakeModel, retries int) (*Oracle, *[]time.Duration) {
	o := newOracle(m, Config{Retries: retries, BaseDelay: time.Second})
	var slept []time.Duration
	o.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return o, &slept
}

func request() sim.NarrativeRequest {
	return sim.NarrativeRequest{
		SessionID: "ses_1",
		Day:       2,
		Context:   sim.ContextCombatAction,
		Action:    "Combat: ORC (Rank E)",
		Stats:     sim.BaselinePlayer(sim.DefaultTuning()),
		Kingdom:   sim.InitialKingdom(),
	}
}

const validJSON = "```json\n{\"narrative\":\"The orc falls.\",\"visualEvents\":[\"PREDATOR\"],\"combatOutcome\":\"victory\",\"statsUpdate\":{\"hp\":4000,\"maxHp\":5000,\"mp\":9000,\"maxMp\":10000,\"ep\":21000,\"rank\":\"A\",\"title\":\"Slime\"}}\n```"

func TestNarrate_ParsesFencedJSON(t *testing.T) {
	m := &fakeModel{text: validJSON}
	o, _ := testOracle(m, 5)

	d, err := o.Narrate(context.Background(), request())
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if d.Narrative != "The orc falls." || d.CombatOutcome != sim.OutcomeVictory {
		t.Fatalf("unexpected delta: %+v", d)
	}
	if d.Stats == nil || d.Stats.HP != 4000 || d.Stats.Rank != sim.RankA {
		t.Fatalf("stats not parsed: %+v", d.Stats)
	}
	if d.Kingdom != nil || d.Tribe != nil {
		t.Fatalf("missing sections must stay nil")
	}
	if !strings.HasPrefix(m.prompts[0], "[DAY: 2] [CONTEXT: Combat Action] Combat: ORC (Rank E)") {
		t.Fatalf("prompt header missing: %q", m.prompts[0])
	}
	if !strings.Contains(m.prompts[0], "combatOutcome to") {
		t.Fatalf("combat hint missing from prompt")
	}
}

func TestNarrate_RetriesRateLimitsWithBackoff(t *testing.T) {
	m := &fakeModel{
		errs: []error{
			&googleapi.Error{Code: 429, Message: "slow down"},
			&googleapi.Error{Code: 503, Message: "overloaded"},
		},
		text: validJSON,
	}
	o, slept := testOracle(m, 5)

	if _, err := o.Narrate(context.Background(), request()); err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if m.calls != 3 {
		t.Fatalf("calls got=%d want=3", m.calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("sleeps got=%d want=2", len(*slept))
	}
	for i, d := range *slept {
		base := time.Second << i
		if d < base || d >= base+maxJitter {
			t.Fatalf("sleep %d got=%v want in [%v,%v)", i, d, base, base+maxJitter)
		}
	}
}

func TestNarrate_QuotaExhaustedAfterRetries(t *testing.T) {
	quota := errors.New("rpc error: code = ResourceExhausted desc = quota exceeded")
	m := &fakeModel{errs: []error{quota, quota, quota}}
	o, slept := testOracle(m, 2)

	_, err := o.Narrate(context.Background(), request())
	if !errors.Is(err, ports.ErrOracleQuota) {
		t.Fatalf("expected ErrOracleQuota, got %v", err)
	}
	if m.calls != 3 || len(*slept) != 2 {
		t.Fatalf("calls=%d sleeps=%d want 3 and 2", m.calls, len(*slept))
	}
}

func TestNarrate_DoesNotRetryOtherErrors(t *testing.T) {
	m := &fakeModel{errs: []error{&googleapi.Error{Code: 400, Message: "bad request"}}}
	o, slept := testOracle(m, 5)

	_, err := o.Narrate(context.Background(), request())
	if !errors.Is(err, ports.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
	if m.calls != 1 || len(*slept) != 0 {
		t.Fatalf("calls=%d sleeps=%d want 1 and 0", m.calls, len(*slept))
	}
}

func TestNarrate_GarbageIsUnavailable(t *testing.T) {
	o, _ := testOracle(&fakeModel{text: "the sage mumbles"}, 5)
	if _, err := o.Narrate(context.Background(), request()); !errors.Is(err, ports.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
		quota     bool
	}{
		{&googleapi.Error{Code: 429}, true, true},
		{&googleapi.Error{Code: 503}, true, false},
		{&googleapi.Error{Code: 500}, false, false},
		{errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), true, true},
		{errors.New("rpc error: code = Unavailable desc = try later"), true, false},
		{errors.New("connection reset"), false, false},
	}
	for _, c := range cases {
		r, q := classify(c.err)
		if r != c.retryable || q != c.quota {
			t.Fatalf("classify(%v) got=(%v,%v) want=(%v,%v)", c.err, r, q, c.retryable, c.quota)
		}
	}
}

func TestSleepCtx_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNarrate_PartialSectionsAreUnavailable(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"stats", `{"narrative":"You rest.","statsUpdate":{"mp":9000}}`},
		{"kingdom", `{"narrative":"You rest.","kingdomUpdate":{"food":5,"buildings":[],"factions":[]}}`},
		{"building", `{"narrative":"You build.","kingdomUpdate":{"food":5,"materials":1,"loyalty":90,"population":3,"techLevel":"Stone","buildings":[{"name":"Wall"}],"factions":[]}}`},
		{"member", `{"narrative":"A new face.","tribeUpdates":[{"id":"m1","name":"Rigurd"}]}`},
		{"null field", `{"narrative":"You rest.","statsUpdate":{"hp":null,"maxHp":5000,"mp":9000,"maxMp":10000,"ep":1,"rank":"B","title":"Slime"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, _ := testOracle(&fakeModel{text: tc.text}, 5)
			_, err := o.Narrate(context.Background(), request())
			if !errors.Is(err, ports.ErrOracleUnavailable) {
				t.Fatalf("expected ErrOracleUnavailable, got %v", err)
			}
		})
	}
}

func TestNarrate_CompleteKingdomAndTribeParse(t *testing.T) {
	text := `{"narrative":"The village grows.",` +
		`"kingdomUpdate":{"food":5,"materials":1,"loyalty":90,"population":3,"techLevel":"Stone",` +
		`"buildings":[{"id":"b1","name":"Wall","level":1,"description":"stone","type":"Defense"}],` +
		`"factions":[{"name":"Dwargon","type":"Kingdom","relation":"Neutro","strength":70}]},` +
		`"tribeUpdates":[{"id":"m1","name":"Rigurd","race":"Goblin","job":"Guard","power":120,"description":"chief"}]}`
	o, _ := testOracle(&fakeModel{text: text}, 5)

	d, err := o.Narrate(context.Background(), request())
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if d.Kingdom == nil || len(d.Kingdom.Buildings) != 1 || len(d.Tribe) != 1 {
		t.Fatalf("unexpected delta: %+v", d)
	}
}

func TestResponseSchemaRequiresFullSections(t *testing.T) {
	s := responseSchema()
	stats := s.Properties["statsUpdate"]
	if stats == nil || len(stats.Required) != 7 {
		t.Fatalf("stats required got=%v want 7 fields", stats)
	}
	kingdom := s.Properties["kingdomUpdate"]
	if kingdom == nil || len(kingdom.Required) != 7 {
		t.Fatalf("kingdom required got=%v want 7 fields", kingdom)
	}
	members := s.Properties["tribeUpdates"]
	if members == nil || members.Items == nil || len(members.Items.Required) != 6 {
		t.Fatalf("tribe member required got=%v want 6 fields", members)
	}
}

func TestNarrate_PromptCarriesHistory(t *testing.T) {
	m := &fakeModel{text: validJSON}
	o, _ := testOracle(m, 0)
	req := request()
	req.History = []sim.Message{
		{Sender: sim.SenderUser, Text: "build a wall"},
		{Sender: sim.SenderGM, Text: "The wall rises."},
	}

	if _, err := o.Narrate(context.Background(), req); err != nil {
		t.Fatalf("narrate: %v", err)
	}
	prompt := m.prompts[0]
	for _, want := range []string{"[PREVIOUS TURNS]", "Player: build a wall", "Great Sage: The wall rises."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %q", want, prompt)
		}
	}
	if strings.Index(prompt, "[PREVIOUS TURNS]") > strings.Index(prompt, "[DAY: 2]") {
		t.Fatalf("history must precede the turn header")
	}
}
