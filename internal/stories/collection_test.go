package stories

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"penora-write/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func story(id, title, body string, typ domain.StoryType, minutes int) domain.Story {
	return domain.Story{
		ID:        id,
		Title:     title,
		Body:      body,
		StoryType: typ,
		SavedAt:   base.Add(time.Duration(minutes) * time.Minute),
		SyncState: domain.SyncSynced,
	}
}

func ids(stories []domain.Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.ID)
	}
	return out
}

func sample() *Collection {
	c := NewCollection()
	c.Seed([]domain.Story{
		story("a", "The Dragon", "A dragon who can't fly", domain.StoryTypePoem, 30),
		story("b", "Sea Tale", "Waves and SHIPS", domain.StoryTypeShort, 10),
		story("c", "Chapter One", "the dragon returns", domain.StoryTypeChapter, 20),
		story("d", "Novel", "long long text", domain.StoryTypeNovel, 40),
	})
	return c
}

func TestCollection_AddPrependsAndRemoveIsNoopWhenAbsent(t *testing.T) {
	c := sample()
	c.Add(story("e", "New", "fresh", domain.StoryTypeShort, 50))
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids(c.All()))

	assert.True(t, c.Remove("b"))
	assert.False(t, c.Remove("missing"))
	assert.Equal(t, []string{"e", "a", "c", "d"}, ids(c.All()))
}

func TestCollection_SeedReplacesInsteadOfMerging(t *testing.T) {
	c := sample()
	c.Seed([]domain.Story{story("z", "Only", "one", domain.StoryTypePoem, 1)})
	assert.Equal(t, []string{"z"}, ids(c.All()))

	c.ReplaceAll(nil)
	assert.Equal(t, 0, c.Len())
}

func TestCollection_QueryComposesFilterSearchSort(t *testing.T) {
	c := sample()

	got := c.Query(Query{Type: FilterAll, Search: "DRAGON", Sort: SortNewest})
	assert.Equal(t, []string{"a", "c"}, ids(got))

	got = c.Query(Query{Type: "chapter", Search: "dragon", Sort: SortOldest})
	assert.Equal(t, []string{"c"}, ids(got))

	got = c.Query(Query{Type: "short", Search: "ships"})
	assert.Equal(t, []string{"b"}, ids(got), "search must be case-insensitive over body")

	got = c.Query(DefaultQuery())
	assert.Equal(t, []string{"d", "a", "c", "b"}, ids(got))

	got = c.Query(Query{Type: FilterAll, Sort: SortOldest})
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(got))

	// Запрос не меняет порядок хранения
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(c.All()))
}

func TestCollection_QueryIsIdempotent(t *testing.T) {
	c := sample()
	q := Query{Type: FilterAll, Search: "a", Sort: SortNewest}
	first := c.Query(q)
	second := c.Query(q)
	assert.Equal(t, first, second)
}

func TestCollection_NewestReversedEqualsOldest(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		c := NewCollection()
		perm := rng.Perm(30)
		for i, p := range perm {
			c.Add(story(fmt.Sprintf("s%d", i), "t", "b", domain.StoryTypeShort, p))
		}

		newest := c.Query(Query{Type: FilterAll, Sort: SortNewest})
		oldest := c.Query(Query{Type: FilterAll, Sort: SortOldest})

		reversed := make([]domain.Story, len(newest))
		for i := range newest {
			reversed[len(newest)-1-i] = newest[i]
		}
		require.Equal(t, ids(oldest), ids(reversed))
	}
}

func TestCollection_MatchesReferenceListModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		c := NewCollection()
		var reference []string
		next := 0

		for step := 0; step < 100; step++ {
			if len(reference) > 0 && rng.Intn(3) == 0 {
				// Удаляем существующий или несуществующий id
				var id string
				if rng.Intn(4) == 0 {
					id = "ghost"
				} else {
					id = reference[rng.Intn(len(reference))]
				}
				c.Remove(id)
				for i, r := range reference {
					if r == id {
						reference = append(reference[:i], reference[i+1:]...)
						break
					}
				}
				continue
			}
			id := fmt.Sprintf("id-%d", next)
			next++
			c.Add(story(id, "t", "b", domain.StoryTypePoem, step))
			reference = append([]string{id}, reference...)
		}

		got := ids(c.All())
		assert.Equal(t, reference, got)

		sortedGot := append([]string(nil), got...)
		sortedRef := append([]string(nil), reference...)
		sort.Strings(sortedGot)
		sort.Strings(sortedRef)
		assert.Equal(t, sortedRef, sortedGot)
	}
}

func TestCollection_ReconcileOverwriteDropsLocalOnly(t *testing.T) {
	c := sample()
	local := domain.NewLocalStory("Mine", "draft", domain.StoryTypeShort, base.Add(time.Hour))
	c.Add(local)

	remote := []domain.Story{story("r1", "Remote", "x", domain.StoryTypePoem, 5)}
	c.Reconcile(remote, ReconcileOverwrite)
	assert.Equal(t, []string{"r1"}, ids(c.All()))
}

func TestCollection_ReconcileMergeKeepsUnsyncedLocal(t *testing.T) {
	c := NewCollection()
	kept := domain.NewLocalStory("Kept", "unsynced", domain.StoryTypeShort, base)
	echoed := domain.NewLocalStory("Echoed", "server knows me", domain.StoryTypeShort, base.Add(time.Minute))
	synced := domain.NewLocalStory("Synced", "saved ok", domain.StoryTypeShort, base.Add(2*time.Minute))
	c.Add(kept)
	c.Add(echoed)
	c.Add(synced)
	require.True(t, c.MarkSynced(synced.ID))

	remoteEcho := story("srv-1", "Echoed", "server knows me", domain.StoryTypeShort, 1)
	remoteEcho.ClientID = echoed.ClientID
	remoteSynced := story("srv-2", "Synced", "saved ok", domain.StoryTypeShort, 2)

	c.Reconcile([]domain.Story{remoteSynced, remoteEcho}, ReconcileMerge)
	assert.Equal(t, []string{kept.ID, "srv-2", "srv-1"}, ids(c.All()))
}

func TestCollection_AddReplacesDuplicateID(t *testing.T) {
	c := sample()
	c.Add(story("c", "Chapter One v2", "changed", domain.StoryTypeChapter, 60))
	assert.Equal(t, 4, c.Len())
	got, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, "Chapter One v2", got.Title)
	assert.Equal(t, "c", c.All()[0].ID)
}
