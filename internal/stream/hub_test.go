package stream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/gomega"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)

	srv := httptest.NewServer(Handler(h))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return f
}

func testTable(t *testing.T) *physics.Table {
	t.Helper()
	cue := physics.NewDisc(400, 500, 0, -200, physics.White)
	cue.Label = "cue"
	tb, err := physics.NewTable(physics.DefaultParams(), []physics.Disc{
		cue,
		physics.NewDisc(400, 193, 0, 0, physics.Red),
	})
	if err != nil {
		t.Fatal(err)
	}
	return tb
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	g := NewWithT(t)
	h, srv := startHub(t)

	a := dial(t, srv)
	b := dial(t, srv)
	g.Eventually(h.Count).Should(Equal(2))

	h.OnStep(sim.New(testTable(t)).Tick(0.1, true))

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		g.Expect(f.Step).To(Equal(1))
		g.Expect(f.Width).To(Equal(800.0))
		g.Expect(f.Radius).To(Equal(20.0))
		g.Expect(f.Discs).To(HaveLen(2))
		g.Expect(f.Discs[0].Label).To(Equal("cue"))
		g.Expect(f.Discs[1].Color).To(Equal("#ff0000"))
	}
}

func TestHub_Unregister(t *testing.T) {
	g := NewWithT(t)
	h, srv := startHub(t)

	conn := dial(t, srv)
	g.Eventually(h.Count).Should(Equal(1))

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	g.Eventually(h.Count).Should(Equal(0))
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := NewHub()
	if err := h.Broadcast(map[string]int{"step": 1}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestHub_BroadcastEncodeError(t *testing.T) {
	h := NewHub()
	if err := h.Broadcast(make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}

func TestHandler_ServesViewer(t *testing.T) {
	_, srv := startHub(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "new WebSocket") {
		t.Error("expected viewer script")
	}
}

func TestPump_StreamsFrames(t *testing.T) {
	g := NewWithT(t)
	h, srv := startHub(t)

	conn := dial(t, srv)
	g.Eventually(h.Count).Should(Equal(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := sim.New(testTable(t))
	done := make(chan error, 1)
	go func() { done <- Pump(ctx, s, h, 50, 0.1, true, false) }()

	first := readFrame(t, conn)
	g.Expect(first.Step).To(Equal(0))

	next := readFrame(t, conn)
	g.Expect(next.Step).To(BeNumerically(">", 0))
	g.Expect(next.Discs[0].Y).To(BeNumerically("<", 500))

	cancel()
	g.Eventually(done).Should(Receive(MatchError(context.Canceled)))
}

func TestPump_StopsAtRest(t *testing.T) {
	h := NewHub()
	tb, err := physics.NewTable(physics.DefaultParams(), []physics.Disc{
		physics.NewDisc(400, 300, 0.5, 0, physics.White),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Pump(ctx, sim.New(tb), h, 100, 0.1, true, true); err != nil {
		t.Errorf("expected clean stop at rest, got %v", err)
	}
}
