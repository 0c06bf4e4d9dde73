package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/classifier"
	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/dialogue"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/prompts"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	"github.com/Chative-core-poc-v1/intake/internal/intake/session"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

func init() { logx.Disable() }

var say = prompts.NewComposer(prompts.FirstPicker)

func fixedNow() time.Time { return time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC) }

func testSet() *registry.Set {
	s := registry.NewSet(map[model.EntityKind]registry.Source{
		model.KindBroker: registry.RowsSource([]registry.Row{
			{Name: "HDFC Securities Limited", Aliases: []string{"HDFC Securities"}},
			{Name: "Zerodha Broking Limited", Aliases: []string{"Zerodha"}},
		}),
		model.KindExchange: registry.RowsSource([]registry.Row{{Name: "BSE Limited", Aliases: []string{"BSE"}}}),
	})
	s.Load()
	return s
}

func newService(t *testing.T, cls classifier.Classifier) (*Service, *session.MemoryStore) {
	t.Helper()
	reg := testSet()
	eng := dialogue.New(reg, cls, complaints.NewPersister(complaints.NewMemoryRepository()),
		dialogue.WithComposer(say), dialogue.WithClock(fixedNow))
	store := session.NewMemoryStore(0)
	return New(eng, store, reg, WithClock(fixedNow)), store
}

func TestHandleTurnMintsConversation(t *testing.T) {
	svc, store := newService(t, classifier.NewKeywordClassifier())
	ctx := context.Background()

	res, err := svc.HandleTurn(ctx, "", "", "")
	require.NoError(t, err)
	_, err = uuid.Parse(res.CID)
	require.NoError(t, err)
	assert.Equal(t, model.StageAwaitingDescription, res.Stage)
	assert.Equal(t, []string{say.Greet()}, res.Messages)

	res2, err := svc.HandleTurn(ctx, res.CID, "my broker zerodha has not paid my funds for two weeks", "")
	require.NoError(t, err)
	assert.Equal(t, res.CID, res2.CID)
	assert.Equal(t, model.StageConfirming, res2.Stage)

	st, found, err := store.Get(ctx, res.CID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Zerodha Broking Limited", st.Pending.Broker)

	turns, err := store.LoadTurns(ctx, res.CID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, session.RoleUser, turns[1].Role)
}

func TestHandleTurnPanicKeepsState(t *testing.T) {
	boom := classifier.Func(func(context.Context, string) model.Classification { panic("classifier exploded") })
	svc, store := newService(t, boom)
	ctx := context.Background()

	res, err := svc.HandleTurn(ctx, "c1", "hi", "")
	require.NoError(t, err)
	require.Equal(t, []string{say.Greet()}, res.Messages)

	res, err = svc.HandleTurn(ctx, "c1", "my broker delayed my order by a week", "")
	require.NoError(t, err)
	assert.Equal(t, []string{say.Retry()}, res.Messages)
	assert.Equal(t, model.StageAwaitingDescription, res.Stage)

	st, found, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, st.Description, "failed turn must not leak partial mutations")
}

func TestHandleTurnEngineErrorKeepsState(t *testing.T) {
	svc, store := newService(t, classifier.NewKeywordClassifier())
	ctx := context.Background()
	bad := model.NewState(fixedNow())
	bad.Stage = "bogus"
	require.NoError(t, store.Put(ctx, "c2", bad))

	res, err := svc.HandleTurn(ctx, "c2", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, []string{say.Retry()}, res.Messages)
	assert.Equal(t, model.Stage("bogus"), res.Stage)
}

type brokenStore struct{ session.MemoryStore }

func (b *brokenStore) Get(context.Context, string) (*model.State, bool, error) {
	return nil, false, errx.Collaborator(errors.New("dial tcp: refused"), errx.RedisErrorMessage)
}

func TestHandleTurnStoreFailure(t *testing.T) {
	reg := testSet()
	eng := dialogue.New(reg, classifier.NewKeywordClassifier(), nil, dialogue.WithComposer(say))
	svc := New(eng, &brokenStore{}, reg)

	res, err := svc.HandleTurn(context.Background(), "c3", "hi", "")
	require.Error(t, err)
	assert.Equal(t, errx.KindCollaborator, errx.KindOf(err))
	assert.Equal(t, []string{say.Retry()}, res.Messages)
}

func TestHandleTurnSerializesPerConversation(t *testing.T) {
	svc, store := newService(t, classifier.NewKeywordClassifier())
	ctx := context.Background()
	_, err := svc.HandleTurn(ctx, "busy", "", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HandleTurn(ctx, "busy", "hmm", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	turns, err := store.LoadTurns(ctx, "busy")
	require.NoError(t, err)
	assert.Len(t, turns, 1+2*n)
}

func TestSuggestAndReload(t *testing.T) {
	svc, _ := newService(t, nil)

	got, err := svc.SuggestEntity("brokers", "zerodha")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zerodha Broking Limited"}, got)

	_, err = svc.SuggestEntity("planets", "x")
	require.Error(t, err)
	assert.Equal(t, errx.KindInput, errx.KindOf(err))

	counts := svc.ReloadRegistries()
	assert.Equal(t, 2, counts[model.KindBroker])
}

func TestReset(t *testing.T) {
	svc, store := newService(t, classifier.Static("Others", "General Grievance"))
	ctx := context.Background()
	_, err := svc.HandleTurn(ctx, "r1", "nobody responds to my grievance emails at all", "")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "r1"))
	st, _, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StageAwaitingDescription, st.Stage)
	assert.Empty(t, st.Description)
}
