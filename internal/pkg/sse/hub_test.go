package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTheUser(t *testing.T) {
	h := NewHub(0)
	asha, closeAsha, err := h.Subscribe("asha")
	require.NoError(t, err)
	defer closeAsha()
	bala, closeBala, err := h.Subscribe("bala")
	require.NoError(t, err)
	defer closeBala()

	delivered := h.Publish("asha", Event{ID: "n1", Event: "notification", Data: "hi"})

	assert.Equal(t, 1, delivered)
	got := <-asha
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "hi", got.Data)
	assert.Empty(t, bala)
}

func TestHub_FullBufferDrops(t *testing.T) {
	h := NewHub(0)
	_, closeFn, err := h.Subscribe("asha")
	require.NoError(t, err)
	defer closeFn()

	for i := 0; i < streamBuffer; i++ {
		assert.Equal(t, 1, h.Publish("asha", Event{Event: "n"}))
	}
	assert.Equal(t, 0, h.Publish("asha", Event{Event: "n"}))
}

func TestHub_StreamCap(t *testing.T) {
	h := NewHub(2)
	_, close1, err := h.Subscribe("asha")
	require.NoError(t, err)
	_, close2, err := h.Subscribe("asha")
	require.NoError(t, err)
	defer close2()

	_, _, err = h.Subscribe("asha")
	assert.ErrorIs(t, err, ErrTooManyStreams)

	close1()
	_, close3, err := h.Subscribe("asha")
	require.NoError(t, err)
	close3()
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	h := NewHub(0)
	ch, closeFn, err := h.Subscribe("asha")
	require.NoError(t, err)

	closeFn()
	closeFn()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.streamCount("asha"))
	assert.Equal(t, 0, h.Publish("asha", Event{}))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer

	err := WriteEvent(&buf, Event{Event: "notification", Data: map[string]string{"title": "Leave approved"}})
	require.NoError(t, err)
	assert.Equal(t, "event: notification\ndata: {\"title\":\"Leave approved\"}\n\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteEvent(&buf, Event{ID: "42", Event: "ping", Data: 1}))
	assert.Equal(t, "id: 42\nevent: ping\ndata: 1\n\n", buf.String())
}
