package state_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pagecast/pkg/logging"
	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/state"
)

var article = pages.NewType("article")

func doc(id string) pages.Page {
	return pages.NewDocument(article, id, nil)
}

// receive reads n values or fails after a second.
func receive(t *testing.T, ch <-chan state.Value, n int) []state.Value {
	t.Helper()
	out := make([]state.Value, 0, n)
	timeout := time.After(time.Second)
	for len(out) < n {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed after %d values", len(out))
			out = append(out, v)
		case <-timeout:
			t.Fatalf("received %d of %d values", len(out), n)
		}
	}
	return out
}

func ids(vs []state.Value) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		p, _ := v.Page()
		out = append(out, p.(*pages.Document).ID)
	}
	return out
}

func TestValue(t *testing.T) {
	v := state.Single(doc("1"))
	assert.False(t, v.IsCollection())
	p, ok := v.Page()
	assert.True(t, ok)
	assert.Equal(t, doc("1"), p)
	_, ok = v.Pages()
	assert.False(t, ok)

	src := []pages.Page{doc("a"), doc("b")}
	c := state.Collection(src)
	src[0] = doc("mutated")
	assert.True(t, c.IsCollection())
	got, ok := c.Pages()
	require.True(t, ok)
	assert.Equal(t, []pages.Page{doc("a"), doc("b")}, got)
	_, ok = c.Page()
	assert.False(t, ok)

	empty, ok := state.Collection(nil).Pages()
	assert.True(t, ok)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReplayToLateSubscriber(t *testing.T) {
	s := state.New()
	for _, id := range []string{"a", "b", "a"} {
		s.Push(state.Single(doc(id)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := receive(t, s.Subscribe(ctx), 3)
	assert.Equal(t, []string{"a", "b", "a"}, ids(got), "values are replayed in order without dedup")
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].Seq, got[1].Seq, got[2].Seq})
	assert.False(t, got[0].PushedAt.IsZero())
}

func TestReplayThenLive(t *testing.T) {
	s := state.New()
	s.Push(state.Single(doc("1")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	assert.Equal(t, []string{"1"}, ids(receive(t, ch, 1)))

	s.Push(state.Single(doc("2")))
	s.Push(state.Single(doc("3")))
	assert.Equal(t, []string{"2", "3"}, ids(receive(t, ch, 2)))
}

func TestSubscribersAreIndependent(t *testing.T) {
	s := state.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := s.Subscribe(ctx)
	fast := s.Subscribe(ctx)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range n {
			s.Push(state.Single(pages.NewDocument(article, string(rune('A'+i%26)), nil)))
		}
	}()

	// fast drains everything while slow has not read anything yet
	gotFast := receive(t, fast, n)
	wg.Wait()
	gotSlow := receive(t, slow, n)

	assert.Equal(t, ids(gotFast), ids(gotSlow))
	assert.Equal(t, n, s.Len())
}

func TestSubscribeCancel(t *testing.T) {
	s := state.New()
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription did not close after cancel")
	}
}

func TestClose(t *testing.T) {
	tl := logging.NewTestLogger(t)
	s := state.New(state.WithLogger(tl.Logger), state.WithName("articles"))
	s.Push(state.Single(doc("1")))
	s.Close()
	s.Close()
	assert.True(t, s.Closed())

	dropped := s.Push(state.Single(doc("2")))
	assert.Zero(t, dropped.Seq)
	assert.Equal(t, 1, s.Len())
	tl.AssertContains(t, "push after close dropped")

	ch := s.Subscribe(context.Background())
	assert.Equal(t, []string{"1"}, ids(receive(t, ch, 1)))
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription did not close after history on a closed state")
	}
}

func TestHistoryIsACopy(t *testing.T) {
	s := state.New()
	s.Push(state.Single(doc("1")))
	h := s.History()
	h[0] = state.Single(doc("x"))
	assert.Equal(t, []string{"1"}, ids(s.History()))
}

func TestRegistry(t *testing.T) {
	r := state.NewRegistry()

	a := r.For("cms")
	assert.Same(t, a, r.For("cms"))
	assert.NotSame(t, a, r.For("other"))
	assert.Same(t, r.For(""), r.For(state.DefaultFamily))
	assert.Equal(t, []state.Family{"cms", "default", "other"}, r.Families())

	r.Close()
	assert.True(t, a.Closed())
}

func TestRegistryConcurrentFor(t *testing.T) {
	r := state.NewRegistry()
	var wg sync.WaitGroup
	got := make([]*state.State, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.For("shared")
		}()
	}
	wg.Wait()
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}
