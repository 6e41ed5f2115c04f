package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/pagecast/pkg/pages"
	"github.com/agentstation/pagecast/pkg/state"
)

func TestValueMessage(t *testing.T) {
	article := pages.NewType("article")
	st := state.New()
	defer st.Close()

	single := st.Push(state.Single(pages.NewDocument(article, "1", nil)))
	multi := st.Push(state.Collection([]pages.Page{pages.NewDocument(article, "2", nil)}))

	m := ValueMessage(single)
	assert.Equal(t, TypePagePushed, m.Type)
	assert.Equal(t, uint64(1), m.Seq)

	m = ValueMessage(multi)
	assert.Equal(t, TypePagesPushed, m.Type)
	assert.Equal(t, uint64(2), m.Seq)
	assert.Len(t, m.Data, 1)
}

func TestHubBroadcastAndStop(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(context.Background(), "c1", hub, nil)
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(NewMessage(TypeDownloadFailed, map[string]string{"data_type": "article"}))
	select {
	case m := <-client.send:
		assert.Equal(t, TypeDownloadFailed, m.Type)
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	cancel()
	<-done
	assert.Equal(t, 0, hub.ClientCount())
	assert.Error(t, client.Context().Err())
	assert.False(t, client.Send(NewMessage(TypeConnected, nil)))
}
