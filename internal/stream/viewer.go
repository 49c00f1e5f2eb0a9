package stream

import (
	"net/http"
)

const viewerPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>billiard</title>
<style>body{background:#111;color:#ccc;font-family:monospace}canvas{background:#0b3d20;border:6px solid #8b5a2b}</style>
</head>
<body>
<canvas id="t"></canvas>
<pre id="s"></pre>
<script>
const c = document.getElementById("t"), g = c.getContext("2d"), s = document.getElementById("s");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (e) => {
  const f = JSON.parse(e.data);
  if (c.width !== f.width) { c.width = f.width; c.height = f.height; }
  g.clearRect(0, 0, c.width, c.height);
  for (const d of f.discs) {
    g.beginPath(); g.arc(d.x, d.y, f.radius, 0, 2 * Math.PI);
    g.fillStyle = d.color; g.fill(); g.strokeStyle = "#000"; g.stroke();
  }
  s.textContent = "t=" + f.time.toFixed(2) + "s step=" + f.step;
};
</script>
</body>
</html>
`

// Handler serves the viewer page at / and the frame stream at /ws.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", h)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(viewerPage))
	})
	return mux
}
