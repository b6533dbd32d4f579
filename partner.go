package main

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection and runs the client pumps. Each connection
// gets a fresh ephemeral player handle; rooms are created and joined through
// messages on the socket itself.
func serveWS(dir *RoomDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := newClient(uuid.NewString(), conn)

		go client.writePump()
		client.readPump(dir)
	}
}

// qrHandler generates a PNG QR code for a room's join URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:roomid/qr; strip trailing "/qr" to get the join URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func indexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		_, _ = w.Write([]byte(indexHTML))
	}
}

// registerPartnerGame sets up routes so that:
//   - $path              → HTML client (create a room from there)
//   - $path/:roomid      → HTML client, pre-filled with the room code
//   - $path/:roomid/qr   → PNG QR code pointing at the join URL
//   - $path/ws           → shared WebSocket endpoint for all rooms
func registerPartnerGame(cfg *Config, dir *RoomDirectory, path string, mux *httprouter.Router) {
	mux.GET(cfg.prefix+path, indexHandler(cfg))
	mux.GET(cfg.prefix+path+"/ws", serveWS(dir))
	mux.GET(cfg.prefix+path+"/:roomid", indexHandler(cfg))
	mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler)
}

// Simple HTML client for quick testing
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Guess Who You Are</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #players { margin-top: 1rem; padding: 0; list-style: none; }
  #players li { padding: 0.25rem 0; border-bottom: 1px solid #ddd; }
  #controls input, #controls button { margin-right: 0.5rem; }
</style>
</head>
<body>
<h1>Guess Who You Are</h1>
<div id="status">Connecting…</div>
<div id="controls">
  <input id="name" placeholder="Your name">
  <input id="room" placeholder="Room code">
  <button id="create">Create room</button>
  <button id="join">Join room</button>
  <button id="start">Start game</button>
</div>
<ul id="players"></ul>
<pre id="events"></pre>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const playersEl = document.getElementById('players');
  const eventsEl = document.getElementById('events');
  const roomEl = document.getElementById('room');

  const parts = location.pathname.replace(/\/$/, '').split('/');
  const maybeCode = parts[parts.length - 1];
  if (/^[A-Z0-9]{6}$/.test(maybeCode)) {
    roomEl.value = maybeCode;
  }

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const base = location.pathname.replace(/\/[A-Z0-9]{6}$/, '').replace(/\/$/, '');
  const ws = new WebSocket(proto + location.host + base + '/ws');

  let roomId = '';

  function send(msg) { ws.send(JSON.stringify(msg)); }

  ws.onopen = function() { statusEl.textContent = 'Connected.'; };
  ws.onclose = function() { statusEl.textContent = 'Disconnected.'; };

  document.getElementById('create').onclick = function() {
    send({ type: 'createRoom', playerName: document.getElementById('name').value });
  };
  document.getElementById('join').onclick = function() {
    send({ type: 'joinRoom', playerName: document.getElementById('name').value, roomId: roomEl.value });
  };
  document.getElementById('start').onclick = function() {
    send({ type: 'startGame', roomId: roomId });
  };

  ws.onmessage = function(event) {
    const msg = JSON.parse(event.data);

    if (msg.type === 'roomCreated' || msg.type === 'joinedRoom') {
      roomId = msg.roomId;
      roomEl.value = roomId;
      statusEl.textContent = 'In room ' + roomId + '.';
    }

    if (msg.players) {
      playersEl.innerHTML = '';
      msg.players.forEach(function(p) {
        const li = document.createElement('li');
        li.textContent = p.name + ': ' + p.score;
        playersEl.appendChild(li);
      });
    }

    eventsEl.textContent = event.data + '\n' + eventsEl.textContent;
  };
})();
</script>
</body>
</html>
`
