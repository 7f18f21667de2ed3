package workflow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/gold"
	"github.com/herohabits/platform/internal/leveling"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

// In-memory fakes for the repository interfaces. Lock methods behave like
// plain reads; locking and constraint semantics are covered by the
// integration build (concurrency_integration_test.go) against a real
// database, these tests cover the decision logic.

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct {
	repository.DBTX
}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type fakeCharacterRepo struct {
	characters map[uuid.UUID]*domain.Character
}

func newFakeCharacterRepo(chars ...*domain.Character) *fakeCharacterRepo {
	m := make(map[uuid.UUID]*domain.Character)
	for _, c := range chars {
		m[c.ID] = c
	}
	return &fakeCharacterRepo{characters: m}
}

func (f *fakeCharacterRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCharacterRepo) ListByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.Character, error) {
	return nil, nil
}

func (f *fakeCharacterRepo) Create(_ context.Context, _ repository.DBTX, c *domain.Character) error {
	cp := *c
	f.characters[c.ID] = &cp
	return nil
}

func (f *fakeCharacterRepo) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.characters, id)
	return nil
}

func (f *fakeCharacterRepo) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCharacterRepo) ApplyGold(_ context.Context, _ pgx.Tx, id uuid.UUID, delta int64) (*domain.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, nil
	}
	c.GoldBalance += delta
	cp := *c
	return &cp, nil
}

func (f *fakeCharacterRepo) UpdateProgress(_ context.Context, _ pgx.Tx, id uuid.UUID, track domain.ProgressTrack) (*domain.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, nil
	}
	c.ProgressTrack = track
	cp := *c
	return &cp, nil
}

type fakeQuestRepo struct {
	quests map[uuid.UUID]*domain.Quest
}

func newFakeQuestRepo(quests ...*domain.Quest) *fakeQuestRepo {
	m := make(map[uuid.UUID]*domain.Quest)
	for _, q := range quests {
		m[q.ID] = q
	}
	return &fakeQuestRepo{quests: m}
}

func (f *fakeQuestRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Quest, error) {
	q, ok := f.quests[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestRepo) ListByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.Quest, error) {
	return nil, nil
}

func (f *fakeQuestRepo) ListActiveByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.Quest, error) {
	return nil, nil
}

func (f *fakeQuestRepo) Create(_ context.Context, _ repository.DBTX, q *domain.Quest) error {
	cp := *q
	f.quests[q.ID] = &cp
	return nil
}

func (f *fakeQuestRepo) Update(_ context.Context, _ repository.DBTX, q *domain.Quest) error {
	cp := *q
	f.quests[q.ID] = &cp
	return nil
}

func (f *fakeQuestRepo) SetActive(_ context.Context, _ repository.DBTX, id uuid.UUID, active bool) error {
	f.quests[id].Active = active
	return nil
}

func (f *fakeQuestRepo) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.quests, id)
	return nil
}

func (f *fakeQuestRepo) SetTraits(context.Context, repository.DBTX, uuid.UUID, []uuid.UUID) error {
	return nil
}

type completionKey struct {
	questID     uuid.UUID
	characterID uuid.UUID
	day         time.Time
}

type fakeCompletionRepo struct {
	completions map[uuid.UUID]*domain.QuestCompletion
	byDate      map[completionKey]uuid.UUID
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{
		completions: make(map[uuid.UUID]*domain.QuestCompletion),
		byDate:      make(map[completionKey]uuid.UUID),
	}
}

func (f *fakeCompletionRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.QuestCompletion, error) {
	c, ok := f.completions[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompletionRepo) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.QuestCompletion, error) {
	return f.FindByID(nil, nil, id)
}

func (f *fakeCompletionRepo) FindForDate(_ context.Context, _ repository.DBTX, questID, characterID uuid.UUID, day time.Time) (*domain.QuestCompletion, error) {
	id, ok := f.byDate[completionKey{questID, characterID, day}]
	if !ok {
		return nil, nil
	}
	return f.FindByID(nil, nil, id)
}

func (f *fakeCompletionRepo) Insert(_ context.Context, _ repository.DBTX, c *domain.QuestCompletion) error {
	cp := *c
	f.completions[c.ID] = &cp
	f.byDate[completionKey{c.QuestID, c.CharacterID, c.CompletionDate}] = c.ID
	return nil
}

func (f *fakeCompletionRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.CompletionStatus, approvedBy uuid.UUID, approvedAt time.Time) (*domain.QuestCompletion, error) {
	c := f.completions[id]
	c.Status = status
	c.ApprovedBy = &approvedBy
	c.ApprovedAt = &approvedAt
	cp := *c
	return &cp, nil
}

func (f *fakeCompletionRepo) ListPendingByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.QuestCompletion, error) {
	return nil, nil
}

func (f *fakeCompletionRepo) ListByCharacter(context.Context, repository.DBTX, uuid.UUID, int) ([]domain.QuestCompletion, error) {
	return nil, nil
}

type progressKey struct {
	characterID uuid.UUID
	traitID     uuid.UUID
}

type fakeTraitRepo struct {
	byQuest  map[uuid.UUID][]domain.TraitDefinition
	progress map[progressKey]*domain.TraitProgress
}

func newFakeTraitRepo() *fakeTraitRepo {
	return &fakeTraitRepo{
		byQuest:  make(map[uuid.UUID][]domain.TraitDefinition),
		progress: make(map[progressKey]*domain.TraitProgress),
	}
}

func (f *fakeTraitRepo) ListDefinitions(context.Context, repository.DBTX) ([]domain.TraitDefinition, error) {
	return nil, nil
}

func (f *fakeTraitRepo) FindDefinition(context.Context, repository.DBTX, uuid.UUID) (*domain.TraitDefinition, error) {
	return nil, nil
}

func (f *fakeTraitRepo) ListByQuest(_ context.Context, _ repository.DBTX, questID uuid.UUID) ([]domain.TraitDefinition, error) {
	return f.byQuest[questID], nil
}

func (f *fakeTraitRepo) LockProgressForUpdate(_ context.Context, _ pgx.Tx, characterID, traitID uuid.UUID) (*domain.TraitProgress, error) {
	p, ok := f.progress[progressKey{characterID, traitID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeTraitRepo) CreateProgress(_ context.Context, _ pgx.Tx, p *domain.TraitProgress) error {
	cp := *p
	f.progress[progressKey{p.CharacterID, p.TraitID}] = &cp
	return nil
}

func (f *fakeTraitRepo) UpdateProgress(_ context.Context, _ pgx.Tx, characterID, traitID uuid.UUID, track domain.ProgressTrack) (*domain.TraitProgress, error) {
	p := f.progress[progressKey{characterID, traitID}]
	p.ProgressTrack = track
	cp := *p
	return &cp, nil
}

func (f *fakeTraitRepo) ListProgressByCharacter(context.Context, repository.DBTX, uuid.UUID) ([]domain.TraitProgress, error) {
	return nil, nil
}

type fakeTreasureRepo struct {
	treasures map[uuid.UUID]*domain.Treasure
	purchases []domain.TreasurePurchase
}

func newFakeTreasureRepo(treasures ...*domain.Treasure) *fakeTreasureRepo {
	m := make(map[uuid.UUID]*domain.Treasure)
	for _, tr := range treasures {
		m[tr.ID] = tr
	}
	return &fakeTreasureRepo{treasures: m}
}

func (f *fakeTreasureRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Treasure, error) {
	tr, ok := f.treasures[id]
	if !ok {
		return nil, nil
	}
	cp := *tr
	return &cp, nil
}

func (f *fakeTreasureRepo) ListByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.Treasure, error) {
	return nil, nil
}

func (f *fakeTreasureRepo) ListAvailableByParent(context.Context, repository.DBTX, uuid.UUID) ([]domain.Treasure, error) {
	return nil, nil
}

func (f *fakeTreasureRepo) Create(_ context.Context, _ repository.DBTX, tr *domain.Treasure) error {
	cp := *tr
	f.treasures[tr.ID] = &cp
	return nil
}

func (f *fakeTreasureRepo) Update(_ context.Context, _ repository.DBTX, tr *domain.Treasure) error {
	cp := *tr
	f.treasures[tr.ID] = &cp
	return nil
}

func (f *fakeTreasureRepo) SetAvailable(_ context.Context, _ repository.DBTX, id uuid.UUID, available bool) error {
	f.treasures[id].Available = available
	return nil
}

func (f *fakeTreasureRepo) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.treasures, id)
	return nil
}

func (f *fakeTreasureRepo) InsertPurchase(_ context.Context, _ pgx.Tx, p *domain.TreasurePurchase) error {
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *fakeTreasureRepo) ListPurchasesByCharacter(context.Context, repository.DBTX, uuid.UUID) ([]domain.TreasurePurchase, error) {
	return f.purchases, nil
}

type fakeOutboxRepo struct {
	drafts []domain.OutboxDraft
}

func (f *fakeOutboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	f.drafts = append(f.drafts, draft)
	return nil
}

func (f *fakeOutboxRepo) FetchUnpublished(context.Context, repository.DBTX, int) ([]domain.OutboxDraft, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkPublished(context.Context, repository.DBTX, []uuid.UUID) error {
	return nil
}

func (f *fakeOutboxRepo) eventTypes() []domain.EventType {
	out := make([]domain.EventType, 0, len(f.drafts))
	for _, d := range f.drafts {
		out = append(out, d.EventType)
	}
	return out
}

type fakeLevelSource struct {
	thresholds map[int]int64
}

func (f *fakeLevelSource) ExperienceForLevel(_ context.Context, level int) (int64, error) {
	if level <= 1 {
		return 0, nil
	}
	return f.thresholds[level], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires a workflow over fakes with one parent, one character, one
// active quest tagged with the given traits.
type fixture struct {
	characters  *fakeCharacterRepo
	quests      *fakeQuestRepo
	completions *fakeCompletionRepo
	traits      *fakeTraitRepo
	treasures   *fakeTreasureRepo
	outbox      *fakeOutboxRepo

	parentID  uuid.UUID
	character *domain.Character
	quest     *domain.Quest

	completionWf *CompletionWorkflow
	purchaseWf   *PurchaseWorkflow
}

func newFixture(goldReward int64, traitNames ...string) *fixture {
	parentID := uuid.New()
	character := &domain.Character{
		ID:            uuid.New(),
		ParentID:      parentID,
		Name:          "Ada",
		ProgressTrack: domain.ProgressTrack{Level: 1},
	}
	quest := &domain.Quest{
		ID:         uuid.New(),
		ParentID:   parentID,
		Title:      "Make the bed",
		GoldReward: goldReward,
		Active:     true,
	}

	f := &fixture{
		characters:  newFakeCharacterRepo(character),
		quests:      newFakeQuestRepo(quest),
		completions: newFakeCompletionRepo(),
		traits:      newFakeTraitRepo(),
		treasures:   newFakeTreasureRepo(),
		outbox:      &fakeOutboxRepo{},
		parentID:    parentID,
		character:   character,
		quest:       quest,
	}

	for i, name := range traitNames {
		f.traits.byQuest[quest.ID] = append(f.traits.byQuest[quest.ID],
			domain.TraitDefinition{ID: uuid.New(), Name: name, SortOrder: i})
	}

	engine := leveling.NewEngine(&fakeLevelSource{thresholds: map[int]int64{
		2: 100,
		3: 250,
		4: 475,
	}})
	ledger := gold.NewLedger(f.characters)
	distributor := leveling.NewDistributor(f.traits, engine)

	f.completionWf = NewCompletionWorkflow(fakeDB{}, f.characters, f.quests,
		f.completions, f.traits, f.outbox, ledger, engine, distributor, testLogger())
	f.purchaseWf = NewPurchaseWorkflow(fakeDB{}, f.characters, f.treasures,
		f.outbox, ledger, testLogger())
	return f
}

func (f *fixture) asChild() domain.Actor {
	return domain.Actor{ID: f.character.ID, Role: domain.RoleChild}
}

func (f *fixture) asParent() domain.Actor {
	return domain.Actor{ID: f.parentID, Role: domain.RoleParent}
}
