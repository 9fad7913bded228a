package ledmachine

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledmachine/model"
)

func readOPCFrame(t *testing.T, conn net.Conn) (channel byte, data []byte) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	header := make([]byte, 4)
	_, errGo := io.ReadFull(conn, header)
	require.NoError(t, errGo)
	assert.Equal(t, byte(0), header[1], "set pixel colors command")

	data = make([]byte, int(header[2])<<8|int(header[3]))
	_, errGo = io.ReadFull(conn, data)
	require.NoError(t, errGo)
	return header[0], data
}

func TestOPCStrip(t *testing.T) {
	listener, errGo := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, errGo)
	defer listener.Close()

	connC := make(chan net.Conn, 1)
	go func() {
		if conn, errGo := listener.Accept(); errGo == nil {
			connC <- conn
		}
	}()

	strip := NewOPCStrip(listener.Addr().String(), 2, 3)
	strip.Pixels()[1] = model.RGB{R: 1, G: 2, B: 3}
	require.Nil(t, strip.Show())

	conn := <-connC
	defer conn.Close()

	channel, data := readOPCFrame(t, conn)
	assert.Equal(t, byte(2), channel)
	assert.Equal(t, []byte{0, 0, 0, 1, 2, 3, 0, 0, 0}, data)

	// An unchanged frame is not sent again, the next frame read is the
	// changed one
	require.Nil(t, strip.Show())
	strip.Pixels()[0] = model.RGB{R: 9}
	require.Nil(t, strip.Show())

	_, data = readOPCFrame(t, conn)
	assert.Equal(t, []byte{9, 0, 0, 1, 2, 3, 0, 0, 0}, data)
}

func TestOPCStripUnreachable(t *testing.T) {
	listener, errGo := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, errGo)
	addr := listener.Addr().String()
	listener.Close()

	strip := NewOPCStrip(addr, 0, 3)
	assert.NotNil(t, strip.Show())

	// Retries are throttled, the next attempt is silently skipped
	assert.Nil(t, strip.Show())
}
