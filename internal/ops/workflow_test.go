package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/stretchr/testify/require"
)

// TestFullWorkflow exercises a whole session:
// register → foods → log → undo → profile → summary → save → login again
func TestFullWorkflow(t *testing.T) {
	s, _ := newTestSession(t, false)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Name: "alice", Login: true})
	require.NoError(t, err)
	require.Equal(t, "alice", s.User())

	// 1. Foods
	_, err = s.AddBasicFood(AddBasicFoodInput{ID: "APL", Keywords: []string{"apple", "fruit"}, Calories: 95})
	require.NoError(t, err)
	_, err = s.AddBasicFood(AddBasicFoodInput{ID: "BUN", Name: "Bun", Keywords: []string{"bread"}, Calories: 120})
	require.NoError(t, err)
	snd, err := s.AddCompositeFood(AddCompositeFoodInput{
		ID:         "SND",
		Name:       "Sandwich",
		Components: []ComponentInput{{FoodID: "APL", Servings: 1}, {FoodID: "BUN", Servings: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 335.0, snd.Calories)

	// 2. Log one SND on 2024-01-01, then undo it
	add, err := s.AddEntry(AddEntryInput{Date: "2024-01-01", FoodID: "SND", Servings: 1})
	require.NoError(t, err)
	require.Equal(t, 1, add.Position)
	require.Equal(t, 335.0, add.Calories)

	list, err := s.ListEntries(ListEntriesInput{Date: "2024-01-01"})
	require.NoError(t, err)
	require.Equal(t, 335.0, list.Total)

	undone, err := s.UndoLog()
	require.NoError(t, err)
	require.Equal(t, "entry_added", undone.Undone)
	require.Equal(t, 0, undone.Remaining)

	list, err = s.ListEntries(ListEntriesInput{Date: "2024-01-01"})
	require.NoError(t, err)
	require.Empty(t, list.Entries)
	require.Equal(t, 0.0, list.Total)

	_, err = s.UndoLog()
	require.True(t, errors.Is(err, errors.ErrEmptyUndoStack))

	// 3. Log on the active date
	_, err = s.AddEntry(AddEntryInput{FoodID: "APL", Servings: 2})
	require.NoError(t, err)
	_, err = s.AddEntry(AddEntryInput{FoodID: "BUN", Servings: 0.5})
	require.NoError(t, err)

	// 4. Profile and summary
	p, err := s.UpdateProfile(UpdateProfileInput{
		Date:     "2026-03-01",
		Gender:   stringPtr("male"),
		HeightCM: floatPtr(180),
		Age:      intPtr(30),
		WeightKG: floatPtr(80),
		Activity: stringPtr("sedentary"),
	})
	require.NoError(t, err)
	require.True(t, p.Explicit)
	require.Equal(t, 2224.4, p.Target)

	sum, err := s.Summary(SummaryInput{})
	require.NoError(t, err)
	require.Equal(t, "2026-03-10", sum.Date)
	require.Equal(t, 2, sum.Entries)
	require.Equal(t, 250.0, sum.Consumed)
	require.NotNil(t, sum.Target)
	require.Equal(t, 2224.4, *sum.Target)
	require.Equal(t, -1974.4, *sum.Difference)
	require.Equal(t, StatusUnder, sum.Status)

	// Carried-over profile on the active date
	got, err := s.GetProfile(GetProfileInput{})
	require.NoError(t, err)
	require.False(t, got.Explicit)
	require.Equal(t, "2026-03-01", got.From)

	// 5. Log out and back in; undo history does not survive
	_, err = s.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, "", s.User())

	login, err := s.Login(ctx, LoginInput{Name: "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, login.Days)
	require.Equal(t, 1, login.Profiles)

	sum, err = s.Summary(SummaryInput{})
	require.NoError(t, err)
	require.Equal(t, 250.0, sum.Consumed)
	require.Equal(t, StatusUnder, sum.Status)

	_, err = s.UndoLog()
	require.True(t, errors.Is(err, errors.ErrEmptyUndoStack))
	_, err = s.UndoProfile()
	require.True(t, errors.Is(err, errors.ErrEmptyUndoStack))
}

func TestWorkflow_RemoveAndUndoRestoresOrder(t *testing.T) {
	s, _ := loggedIn(t)

	for _, id := range []string{"apple", "egg", "rice"} {
		_, err := s.AddEntry(AddEntryInput{FoodID: id, Servings: 1})
		require.NoError(t, err)
	}
	before, err := s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)

	removed, err := s.RemoveEntry(RemoveEntryInput{Position: 2})
	require.NoError(t, err)
	require.Equal(t, "egg", removed.FoodID)

	mid, err := s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Len(t, mid.Entries, 2)
	require.Equal(t, "rice", mid.Entries[1].FoodID)
	require.Equal(t, 2, mid.Entries[1].Position)

	undone, err := s.UndoLog()
	require.NoError(t, err)
	require.Equal(t, "entry_removed", undone.Undone)
	require.Equal(t, 2, undone.Position)

	after, err := s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestWorkflow_EntryErrors(t *testing.T) {
	s, _ := loggedIn(t)

	_, err := s.AddEntry(AddEntryInput{FoodID: "nope", Servings: 1})
	require.True(t, errors.Is(err, errors.ErrUnknownFood))

	_, err = s.AddEntry(AddEntryInput{FoodID: "apple", Servings: 0})
	require.True(t, errors.Is(err, errors.ErrInvalidServings))

	_, err = s.AddEntry(AddEntryInput{FoodID: "apple", Servings: -1})
	require.True(t, errors.Is(err, errors.ErrInvalidServings))

	_, err = s.RemoveEntry(RemoveEntryInput{Position: 1})
	require.True(t, errors.Is(err, errors.ErrIndexOutOfRange))

	_, err = s.AddEntry(AddEntryInput{Date: "not-a-date", FoodID: "apple", Servings: 1})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	// Nothing above was recorded for undo.
	_, err = s.UndoLog()
	require.True(t, errors.Is(err, errors.ErrEmptyUndoStack))
}

func TestWorkflow_ProfileUndoIsIndependent(t *testing.T) {
	s, _ := loggedIn(t)

	_, err := s.UpdateProfile(UpdateProfileInput{
		Gender: stringPtr("f"), HeightCM: floatPtr(165), Age: intPtr(25), WeightKG: floatPtr(60), Activity: stringPtr("3"),
	})
	require.NoError(t, err)
	_, err = s.AddEntry(AddEntryInput{FoodID: "banana", Servings: 1})
	require.NoError(t, err)
	_, err = s.UpdateProfile(UpdateProfileInput{WeightKG: floatPtr(58)})
	require.NoError(t, err)

	undone, err := s.UndoProfile()
	require.NoError(t, err)
	require.Equal(t, "profile_changed", undone.Undone)
	require.Equal(t, 1, undone.Remaining)

	p, err := s.GetProfile(GetProfileInput{})
	require.NoError(t, err)
	require.Equal(t, 60.0, p.WeightKG)

	// The log entry survives profile undo.
	list, err := s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)

	_, err = s.UndoProfile()
	require.NoError(t, err)
	_, err = s.GetProfile(GetProfileInput{})
	require.True(t, errors.Is(err, errors.ErrNoProfileEstablished))

	sum, err := s.Summary(SummaryInput{})
	require.NoError(t, err)
	require.Nil(t, sum.Target)
	require.Empty(t, sum.Status)
}

func TestWorkflow_ProfileValidation(t *testing.T) {
	s, _ := loggedIn(t)

	_, err := s.UpdateProfile(UpdateProfileInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	// First record must be complete.
	_, err = s.UpdateProfile(UpdateProfileInput{Age: intPtr(40)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.UpdateProfile(UpdateProfileInput{
		Gender: stringPtr("m"), HeightCM: floatPtr(170), Age: intPtr(40), WeightKG: floatPtr(70), Activity: stringPtr("lazy"),
	})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.UndoProfile()
	require.True(t, errors.Is(err, errors.ErrEmptyUndoStack))
}

func TestWorkflow_StrategyChangesOnlyTarget(t *testing.T) {
	s, _ := loggedIn(t)
	ctx := context.Background()

	_, err := s.UpdateProfile(UpdateProfileInput{
		Gender: stringPtr("male"), HeightCM: floatPtr(180), Age: intPtr(30), WeightKG: floatPtr(80), Activity: stringPtr("sedentary"),
	})
	require.NoError(t, err)
	_, err = s.AddEntry(AddEntryInput{FoodID: "rice", Servings: 1})
	require.NoError(t, err)

	hb, err := s.Summary(SummaryInput{})
	require.NoError(t, err)

	_, err = s.SetStrategy(SetStrategyInput{Name: "mifflin"})
	require.NoError(t, err)

	msj, err := s.Summary(SummaryInput{})
	require.NoError(t, err)
	require.Equal(t, hb.Consumed, msj.Consumed)
	require.Equal(t, "mifflin-st-jeor", msj.Strategy)
	require.Equal(t, 2136.0, *msj.Target) // (800 + 1125 - 150 + 5) * 1.2
	require.NotEqual(t, *hb.Target, *msj.Target)

	// Strategy is stored with the user.
	_, err = s.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, "harris-benedict", s.Strategy().Strategy)
	login, err := s.Login(ctx, LoginInput{Name: "alice"})
	require.NoError(t, err)
	require.Equal(t, "mifflin-st-jeor", login.Strategy)
}

func TestWorkflow_LoginSwitchesUsers(t *testing.T) {
	s, _ := loggedIn(t)
	ctx := context.Background()

	_, err := s.AddEntry(AddEntryInput{FoodID: "egg", Servings: 3})
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterInput{Name: "bob", Login: true})
	require.NoError(t, err)
	require.Equal(t, "bob", s.User())

	list, err := s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Empty(t, list.Entries)

	// alice was saved on the way out.
	_, err = s.Login(ctx, LoginInput{Name: "alice"})
	require.NoError(t, err)
	list, err = s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	require.Equal(t, 234.0, list.Total)

	// Logging in again as the same user keeps unsaved changes.
	_, err = s.AddEntry(AddEntryInput{FoodID: "egg", Servings: 1})
	require.NoError(t, err)
	_, err = s.Login(ctx, LoginInput{Name: "alice"})
	require.NoError(t, err)
	list, err = s.ListEntries(ListEntriesInput{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)
}
