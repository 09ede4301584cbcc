package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"helix-api/internal/domain"
	"helix-api/internal/genetics"
)

func int64Ptr(v int64) *int64 { return &v }

func newTestSimulationService() (*SimulationService, *mockSimulationRepo, *mockPartnerRepo) {
	sims := newMockSimulationRepo()
	partners := newMockPartnerRepo()
	return NewSimulationService(zap.NewNop(), sims, partners, 0), sims, partners
}

func TestSimulationServiceRun_SavesAdvancedRecord(t *testing.T) {
	svc, sims, _ := newTestSimulationService()

	sim, err := svc.Run(context.Background(), "u1", RunSimulationInput{
		Traits: []string{"eye-color", " height ", "eye-color", ""},
		Seed:   int64Ptr(42),
	})
	if err != nil {
		t.Fatalf("expected run success, got %v", err)
	}
	if len(sim.SelectedTraits) != 2 || sim.SelectedTraits[0] != "eye-color" || sim.SelectedTraits[1] != "height" {
		t.Fatalf("expected trimmed and deduplicated traits, got %v", sim.SelectedTraits)
	}
	if sim.SimulationType != domain.SimulationTypeAdvancedOffspring {
		t.Fatalf("unexpected type %q", sim.SimulationType)
	}
	if !strings.HasPrefix(sim.Name, "Advanced Simulation ") || sim.Name != "Advanced Simulation "+sim.CreatedAt.Format("2006-01-02") {
		t.Fatalf("unexpected name %q", sim.Name)
	}
	if sim.Seed != 42 || sim.UserID != "u1" {
		t.Fatalf("unexpected seed/user: %d %s", sim.Seed, sim.UserID)
	}
	if sim.AccuracyScore != sim.Results.Accuracy {
		t.Fatalf("accuracy score should mirror result accuracy")
	}
	if got := len(sim.Fingerprint.Slice()); got != len(genetics.TraitKeys) {
		t.Fatalf("expected fingerprint of %d dims, got %d", len(genetics.TraitKeys), got)
	}
	if _, ok := sims.sims[sim.ID]; !ok {
		t.Fatalf("expected simulation persisted")
	}
}

func TestSimulationServiceRun_DefaultTraits(t *testing.T) {
	svc, _, _ := newTestSimulationService()
	sim, err := svc.Run(context.Background(), "", RunSimulationInput{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sim.SelectedTraits) != 2 || sim.SelectedTraits[0] != genetics.TraitEyeColor || sim.SelectedTraits[1] != genetics.TraitHeight {
		t.Fatalf("expected default traits, got %v", sim.SelectedTraits)
	}
}

func TestSimulationServiceRun_TooManyTraits(t *testing.T) {
	svc, _, _ := newTestSimulationService()
	traits := make([]string, 0, maxTraitsPerRun+1)
	for i := 0; i <= maxTraitsPerRun; i++ {
		traits = append(traits, "trait-"+strings.Repeat("x", i+1))
	}
	if _, err := svc.Run(context.Background(), "u1", RunSimulationInput{Traits: traits}); !errors.Is(err, ErrTooManyTraits) {
		t.Fatalf("expected ErrTooManyTraits, got %v", err)
	}
}

func TestSimulationServiceRun_RejectsOutOfRangeParents(t *testing.T) {
	svc, sims, _ := newTestSimulationService()
	cases := []RunSimulationInput{
		{Parents: &genetics.ParentPair{Parent1: genetics.ParentDescriptor{Height: -40}}},
		{Parents: &genetics.ParentPair{Parent2: genetics.ParentDescriptor{IQ: 500}}},
		{Parents: &genetics.ParentPair{Parent1: genetics.ParentDescriptor{EyeColor: "violet"}}},
		{Parents: &genetics.ParentPair{Parent2: genetics.ParentDescriptor{Population: "atlantean"}}},
		{Environment: &genetics.Environment{Education: 1.5}},
	}
	for i, input := range cases {
		if _, err := svc.Run(context.Background(), "u1", input); !errors.Is(err, ErrInvalidParents) {
			t.Fatalf("case %d: expected ErrInvalidParents, got %v", i, err)
		}
	}
	if len(sims.sims) != 0 {
		t.Fatalf("rejected runs must not be saved")
	}

	// cero es dato ausente y se acepta
	ok := RunSimulationInput{Parents: &genetics.ParentPair{Parent1: genetics.ParentDescriptor{Height: 180}}}
	if _, err := svc.Run(context.Background(), "u1", ok); err != nil {
		t.Fatalf("expected partial parents to be accepted, got %v", err)
	}
}

func TestSimulationServiceRun_AnonymousIsNotSaved(t *testing.T) {
	svc, sims, _ := newTestSimulationService()
	if _, err := svc.Run(context.Background(), "", RunSimulationInput{Seed: int64Ptr(1)}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sims.sims) != 0 {
		t.Fatalf("expected nothing persisted for anonymous run")
	}
}

func TestSimulationServiceRun_SaveFailureKeepsResult(t *testing.T) {
	svc, sims, _ := newTestSimulationService()
	sims.createErr = errors.New("db down")

	sim, err := svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(7)})
	if !errors.Is(err, ErrSimulationNotSaved) {
		t.Fatalf("expected ErrSimulationNotSaved, got %v", err)
	}
	if sim.ID == "" || len(sim.Results.Offspring) == 0 {
		t.Fatalf("expected usable result despite save failure")
	}
}

func TestSimulationServiceRun_SameSeedSameOutcomes(t *testing.T) {
	svc, _, _ := newTestSimulationService()
	input := RunSimulationInput{Traits: []string{"height", "intelligence", "athletic"}, Seed: int64Ptr(99)}

	a, err := svc.Run(context.Background(), "", input)
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	b, err := svc.Run(context.Background(), "", input)
	if err != nil {
		t.Fatalf("run b: %v", err)
	}
	if len(a.Results.Offspring) != len(b.Results.Offspring) || a.AccuracyScore != b.AccuracyScore {
		t.Fatalf("expected identical runs for identical seed")
	}
	for i := range a.Results.Offspring {
		if a.Results.Offspring[i].Traits["height"].Value != b.Results.Offspring[i].Traits["height"].Value {
			t.Fatalf("offspring %d differs", i)
		}
	}
}

func TestSimulationServiceRun_UsesPartnerAsSecondParent(t *testing.T) {
	svc, _, partners := newTestSimulationService()
	partners.byUser["u1"] = domain.Partner{UserID: "u1", Name: "Sam", HeightCM: 190, IQ: 130, EyeColor: "green", Population: "european"}

	sim, err := svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(3)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sim.Parent2.Height != 190 || sim.Parent2.IQ != 130 || sim.Parent2.EyeColor != "green" {
		t.Fatalf("expected partner as parent2, got %+v", sim.Parent2)
	}

	explicit := &genetics.ParentPair{
		Parent1: genetics.ParentDescriptor{Height: 160, IQ: 100},
		Parent2: genetics.ParentDescriptor{Height: 170, IQ: 110},
	}
	sim, err = svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(3), Parents: explicit})
	if err != nil {
		t.Fatalf("run explicit: %v", err)
	}
	if sim.Parent2.Height != 170 {
		t.Fatalf("explicit parents must win over partner, got %+v", sim.Parent2)
	}
}

func TestSimulationServiceRun_PartnerLookupErrorIgnored(t *testing.T) {
	svc, _, partners := newTestSimulationService()
	partners.getErr = errors.New("timeout")
	if _, err := svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(3)}); err != nil {
		t.Fatalf("expected partner errors to be ignored, got %v", err)
	}
}

func TestSimulationServiceRun_DelayHonoursContext(t *testing.T) {
	svc := NewSimulationService(zap.NewNop(), newMockSimulationRepo(), nil, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Run(ctx, "u1", RunSimulationInput{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("run should stop waiting once the context is done")
	}
}

func TestSimulationServiceGet_OwnerOnly(t *testing.T) {
	svc, _, _ := newTestSimulationService()
	sim, err := svc.Run(context.Background(), "owner", RunSimulationInput{Seed: int64Ptr(5)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := svc.Get(context.Background(), "owner", sim.ID)
	if err != nil || got.ID != sim.ID {
		t.Fatalf("expected owner to read simulation, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "intruder", sim.ID); !errors.Is(err, ErrSimulationNotFound) {
		t.Fatalf("expected ErrSimulationNotFound for other user, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "owner", "missing"); !errors.Is(err, ErrSimulationNotFound) {
		t.Fatalf("expected ErrSimulationNotFound for missing id, got %v", err)
	}
}

func TestSimulationServiceList_NewestFirst(t *testing.T) {
	svc, sims, _ := newTestSimulationService()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sims.sims[id] = domain.Simulation{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
	}
	sims.sims["x"] = domain.Simulation{ID: "x", UserID: "u2", CreatedAt: base}

	list, err := svc.List(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", list)
	}

	empty, err := svc.List(context.Background(), "nobody", 0)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", empty, err)
	}
}

func TestSimulationServiceSimilar(t *testing.T) {
	svc, sims, _ := newTestSimulationService()
	first, err := svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(1)})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := svc.Run(context.Background(), "u1", RunSimulationInput{Seed: int64Ptr(2)}); err != nil {
		t.Fatalf("run: %v", err)
	}

	similar, err := svc.Similar(context.Background(), "u1", first.ID, 0)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if len(similar) != 1 || similar[0].ID == first.ID {
		t.Fatalf("expected the other simulation only, got %+v", similar)
	}
	if sims.similarArg.k != defaultSimilarK || sims.similarArg.excludeID != first.ID {
		t.Fatalf("unexpected similar args: %+v", sims.similarArg)
	}

	if _, err := svc.Similar(context.Background(), "u1", first.ID, 1000); err != nil {
		t.Fatalf("similar: %v", err)
	}
	if sims.similarArg.k != maxSimilarK {
		t.Fatalf("expected k capped at %d, got %d", maxSimilarK, sims.similarArg.k)
	}
	if _, err := svc.Similar(context.Background(), "u2", first.ID, 3); !errors.Is(err, ErrSimulationNotFound) {
		t.Fatalf("expected ErrSimulationNotFound for foreign simulation, got %v", err)
	}
}
