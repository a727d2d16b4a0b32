package automation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskgenius/internal/model"
	"github.com/sadopc/taskgenius/internal/store"
)

func newTestDB(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRuleStoreSeedsDefaultsOnce(t *testing.T) {
	db := newTestDB(t)
	rs, err := NewRuleStore(db, nil)
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "Morning Tasks Creator", rules[0].Name)
	assert.Equal(t, model.TriggerTimeOfDay, rules[0].TriggerType)
	assert.Equal(t, "09:00", rules[0].Conditions[model.ParamTime])
	assert.Equal(t, model.TriggerTaskCompletion, rules[1].TriggerType)
	assert.Equal(t, "Great Job!", rules[1].Conditions[model.ParamNotificationTitle])

	// Seeding is persisted, and deleting a default does not bring it back.
	require.NoError(t, rs.Delete(rules[0].ID))
	again, err := NewRuleStore(db, nil)
	require.NoError(t, err)
	assert.Len(t, again.Rules(), 1)
}

func TestRuleStoreCorruptDataReseeds(t *testing.T) {
	db := newTestDB(t)
	db.Set(store.KeyRules, []byte("[{"))

	rs, err := NewRuleStore(db, nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rules(), 2)
}

func TestRuleStoreCRUD(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	rs, err := NewRuleStore(db, func() time.Time { return now })
	require.NoError(t, err)

	require.NoError(t, rs.Add(model.AutomationRule{Name: "custom", TriggerType: model.TriggerCategoryBased, ActionType: model.ActionCreateTask, IsActive: true}))
	all := rs.Rules()
	require.Len(t, all, 3)
	added := all[2]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, now, added.CreatedAt)
	assert.NotNil(t, added.Conditions)

	added.Name = "renamed"
	require.NoError(t, rs.Update(added))
	got, ok := rs.Rule(added.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, rs.Update(model.AutomationRule{ID: "ghost", Name: "x"}))
	assert.Len(t, rs.Rules(), 3)

	require.NoError(t, rs.Delete(added.ID))
	assert.Len(t, rs.Rules(), 2)
}

func TestRuleStoreToggleActivePartition(t *testing.T) {
	rs, err := NewRuleStore(newTestDB(t), nil)
	require.NoError(t, err)
	first := rs.Rules()[0]

	require.NoError(t, rs.ToggleActive(first.ID))
	assert.Len(t, rs.Active(), 1)
	require.Len(t, rs.Inactive(), 1)
	assert.Equal(t, first.ID, rs.Inactive()[0].ID)

	require.NoError(t, rs.ToggleActive(first.ID))
	assert.Len(t, rs.Active(), 2)
	assert.Empty(t, rs.Inactive())
}

func TestRuleStoreSubscribe(t *testing.T) {
	rs, err := NewRuleStore(newTestDB(t), nil)
	require.NoError(t, err)

	var got []model.AutomationRule
	rs.Subscribe(func(r []model.AutomationRule) { got = r })
	rs.ToggleActive(rs.Rules()[0].ID)

	require.Len(t, got, 2)
	assert.False(t, got[0].IsActive)
}

func TestQuickRuleBuilders(t *testing.T) {
	rs, err := NewRuleStore(newTestDB(t), nil)
	require.NoError(t, err)

	daily, err := rs.DailyReminder("07:30", "Stretch", "Time to stretch")
	require.NoError(t, err)
	assert.Equal(t, "Daily Reminder: Stretch", daily.Name)
	assert.Equal(t, model.TimeOfDayTrigger{Hour: 7, Minute: 30}, daily.DecodeTrigger())

	weekly, err := rs.WeeklyTask(2, "Standup notes", "Prepare notes", model.CategoryWork)
	require.NoError(t, err)
	assert.Equal(t, "Weekly Task: Standup notes", weekly.Name)
	assert.Equal(t, model.DayOfWeekTrigger{Weekday: 2}, weekly.DecodeTrigger())
	assert.Equal(t, "Work", weekly.Conditions[model.ParamCategory])

	reward, err := rs.CompletionReward("Nice", "Well done")
	require.NoError(t, err)
	assert.Equal(t, model.ActionSendNotification, reward.ActionType)

	assert.Len(t, rs.Rules(), 5)
}

type failingDB struct {
	*store.Store
	fail bool
}

func (f *failingDB) Save(key string, v any) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Save(key, v)
}

func TestRuleStoreFailedWriteLeavesRulesUnchanged(t *testing.T) {
	db := &failingDB{Store: newTestDB(t)}
	s, err := NewRuleStore(db, time.Now)
	require.NoError(t, err)
	before := s.Rules()

	db.fail = true
	assert.Error(t, s.ToggleActive(before[0].ID))
	assert.Error(t, s.Delete(before[1].ID))
	_, err = s.CompletionReward("Yay", "done")
	assert.Error(t, err)

	assert.Equal(t, before, s.Rules())
}
