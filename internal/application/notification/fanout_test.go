package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/recruit-notes/internal/application/mention"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/pkg/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team() []domain.User {
	return []domain.User{
		{UserID: "u-alice", Name: "Alice", Email: "alice@corp.test"},
		{UserID: "u-bob", Name: "Bob", Email: "bob@corp.test"},
		{UserID: "u-carol", Name: "Carol", Email: "carol@corp.test"},
		{UserID: "u-dan", Name: "Dan", Email: "dan@corp.test"},
	}
}

func candidate() domain.Candidate {
	return domain.Candidate{CandidateID: "c1", Name: "Jane Doe"}
}

func TestNotifyMentions_SkipsAuthorAndDedupes(t *testing.T) {
	store := newMemStore()
	f := NewFanout(FanoutDeps{NotificationRepo: store})

	note := domain.Note{
		NoteID: "n1", CandidateID: "c1", Content: "hi",
		AuthorID: "u-alice", AuthorName: "Alice",
		Mentions: []string{"u-alice", "u-bob", "u-bob", "u-carol"},
	}
	res := f.NotifyMentions(context.Background(), note, candidate())

	assert.Equal(t, Result{Sent: 2}, res)
	assert.Empty(t, store.forUser("u-alice"))
	require.Len(t, store.forUser("u-bob"), 1)
	n := store.forUser("u-bob")[0]
	assert.Equal(t, domain.NotificationMention, n.Type)
	assert.Equal(t, "Alice mentioned you in a note about Jane Doe", n.Message)
	assert.Equal(t, "n1", n.NoteID)
	assert.Equal(t, "u-alice", n.FromUserID)
	assert.False(t, n.Read)
}

func TestNotifyMentions_SelfMentionFromParsedText(t *testing.T) {
	store := newMemStore()
	f := NewFanout(FanoutDeps{NotificationRepo: store})

	ids := mention.ResolveIDs(mention.Parse("note to self @Alice."), team())
	require.Equal(t, []string{"u-alice"}, ids)

	res := f.NotifyMentions(context.Background(), domain.Note{
		NoteID: "n1", AuthorID: "u-alice", AuthorName: "Alice", Mentions: ids,
	}, candidate())
	assert.Equal(t, Result{}, res)
	assert.Empty(t, store.forUser("u-alice"))
}

func TestNotifyMentions_PreviewTruncated(t *testing.T) {
	store := newMemStore()
	f := NewFanout(FanoutDeps{NotificationRepo: store})
	long := strings.Repeat("x", 150)

	f.NotifyMentions(context.Background(), domain.Note{
		NoteID: "n1", AuthorID: "u-alice", AuthorName: "Alice", Content: long, Mentions: []string{"u-bob"},
	}, candidate())

	got := store.forUser("u-bob")[0].Content
	assert.Equal(t, strings.Repeat("x", 100)+"...", got)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, Preview(exact))
}

func TestNotifyMentions_PartialFailureContinues(t *testing.T) {
	store := newMemStore()
	store.failPutFor["u-bob"] = true
	f := NewFanout(FanoutDeps{NotificationRepo: store, Concurrency: 2})

	res := f.NotifyMentions(context.Background(), domain.Note{
		NoteID: "n1", AuthorID: "u-alice", AuthorName: "Alice",
		Mentions: []string{"u-bob", "u-carol", "u-dan"},
	}, candidate())

	assert.Equal(t, Result{Sent: 2, Failed: 1}, res)
	assert.Len(t, store.forUser("u-carol"), 1)
	assert.Len(t, store.forUser("u-dan"), 1)
}

func TestNotifyCandidateCreated_BroadcastsToEveryoneButCreator(t *testing.T) {
	store := newMemStore()
	f := NewFanout(FanoutDeps{NotificationRepo: store, UserRepo: staticDirectory{users: team()}})

	res := f.NotifyCandidateCreated(context.Background(), candidate(), team()[0])

	assert.Equal(t, Result{Sent: len(team()) - 1}, res)
	assert.Empty(t, store.forUser("u-alice"))
	n := store.forUser("u-dan")[0]
	assert.Equal(t, domain.NotificationCandidate, n.Type)
	assert.Equal(t, "New candidate added by Alice: Jane Doe", n.Message)
}

func TestNotifyCandidateCreated_DirectoryError(t *testing.T) {
	f := NewFanout(FanoutDeps{NotificationRepo: newMemStore(), UserRepo: staticDirectory{err: errors.New("scan failed")}})
	assert.Equal(t, Result{}, f.NotifyCandidateCreated(context.Background(), candidate(), team()[0]))
}

func TestFanout_PublishesLiveEventAndInvalidatesInbox(t *testing.T) {
	hub := realtime.NewHub()
	mem := cache.NewMemory()
	ctx := context.Background()
	mem.SetJSON(ctx, cache.NotificationsKey("u-bob"), Page{}, cache.TTLShort)
	sub := hub.Subscribe(realtime.UserTopic("u-bob"))
	defer sub.Close()

	f := NewFanout(FanoutDeps{NotificationRepo: newMemStore(), Cache: mem, Broker: hub})
	f.NotifyMentions(ctx, domain.Note{NoteID: "n1", AuthorID: "u-alice", AuthorName: "Alice", Mentions: []string{"u-bob"}}, candidate())

	require.Len(t, sub.Events(), 1)
	ev := <-sub.Events()
	assert.Equal(t, domain.EventNotificationCreated, ev.Type)

	var p Page
	assert.False(t, mem.GetJSON(ctx, cache.NotificationsKey("u-bob"), &p))
}
