package chatclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// testRelay mimics the server's relay behavior: every frame received from
// any member is broadcast to every member of the room, sender included.
type testRelay struct {
	srv *httptest.Server

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newTestRelay() *testRelay {
	r := &testRelay{conns: make(map[*websocket.Conn]struct{})}
	r.srv = httptest.NewServer(http.HandlerFunc(r.serve))
	return r
}

func (r *testRelay) serve(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}

	r.mu.Lock()
	r.conns[conn] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.conns, conn)
		r.mu.Unlock()
		conn.CloseNow()
	}()

	for {
		_, payload, err := conn.Read(req.Context())
		if err != nil {
			return
		}
		r.broadcast(payload)
	}
}

func (r *testRelay) broadcast(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn.Write(ctx, websocket.MessageText, payload)
		cancel()
	}
}

// push injects a raw frame into the room without a sending member.
func (r *testRelay) push(payload []byte) {
	r.broadcast(payload)
}

func (r *testRelay) connCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *testRelay) URL() string { return r.srv.URL }

func (r *testRelay) Close() { r.srv.Close() }
