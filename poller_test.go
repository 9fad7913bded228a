package ledmachine

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledmachine/model"
)

func TestPollerCommands(t *testing.T) {
	listing := `{"messages": [{"id": "1", "text": "red"}, {"id": "2", "text": "carnival"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	}))
	defer server.Close()

	msgC := make(chan *model.Message, 4)
	poller, err := NewPoller(server.URL, msgC, make(chan errors.Error, 1))
	require.Nil(t, err)

	poller.sendCommands()
	first, second := receive(t, msgC), receive(t, msgC)
	assert.Equal(t, "red", first.Text)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "carnival", second.Text)

	// Commands already passed on are not repeated
	listing = `{"messages": [{"id": "2", "text": "carnival"}, {"id": "3", "text": "slow"}]}`
	poller.sendCommands()
	assert.Equal(t, "slow", receive(t, msgC).Text)
	assert.Empty(t, msgC)
}

func TestPollerFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	poller, err := NewPoller(server.URL, make(chan *model.Message), make(chan errors.Error, 1))
	require.Nil(t, err)
	_, err = poller.checkCommands()
	assert.NotNil(t, err)

	poller, err = NewPoller("ftp://example.com/commands", make(chan *model.Message), make(chan errors.Error, 1))
	require.Nil(t, err)
	_, err = poller.checkCommands()
	assert.NotNil(t, err)
}

func TestPollerForgets(t *testing.T) {
	poller, err := NewPoller("http://localhost", make(chan *model.Message), make(chan errors.Error, 1))
	require.Nil(t, err)

	for i := 0; i <= pollSeenLimit; i++ {
		poller.fresh([]pMessage{{ID: fmt.Sprint(i)}})
	}
	assert.Len(t, poller.seen, pollSeenLimit)

	// The oldest id has been forgotten and is fresh again
	assert.Len(t, poller.fresh([]pMessage{{ID: "0"}}), 1)
	assert.Empty(t, poller.fresh([]pMessage{{ID: fmt.Sprint(pollSeenLimit)}}))
}

func TestPollerCommandsWithoutIDs(t *testing.T) {
	poller, err := NewPoller("http://localhost", make(chan *model.Message), make(chan errors.Error, 1))
	require.Nil(t, err)

	assert.Len(t, poller.fresh([]pMessage{{Text: "red"}, {Text: "blue"}}), 2)
	assert.Len(t, poller.fresh([]pMessage{{Text: "green"}}), 1)
	assert.Empty(t, poller.seen)
}
