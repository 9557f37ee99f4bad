package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RemotePage serves the mobile-friendly control page. The page itself is
// public so a token can be pasted in; every API call it makes is
// token-protected.
func RemotePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(remoteHTML))
}

const remoteHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Pomodoro Remote</title>
    <style>
      body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0; background: #0b1220; color: #e8eefc; }
      .wrap { max-width: 520px; margin: 0 auto; padding: 16px; }
      .card { background: rgba(255,255,255,0.06); border: 1px solid rgba(255,255,255,0.10); border-radius: 16px; padding: 16px; }
      .big { font-size: 44px; font-weight: 750; }
      .muted { color: rgba(232,238,252,0.72); font-size: 13px; }
      .btns { display: grid; grid-template-columns: 1fr 1fr; gap: 10px; margin-top: 14px; }
      button { border: 1px solid rgba(255,255,255,0.14); background: rgba(255,255,255,0.08); color: #e8eefc; padding: 12px 14px; border-radius: 12px; font-size: 16px; font-weight: 650; }
      .token { width: 100%; padding: 12px 14px; border-radius: 12px; border: 1px solid rgba(255,255,255,0.14); background: rgba(0,0,0,0.25); color: #e8eefc; }
    </style>
  </head>
  <body>
    <div class="wrap">
      <div class="card">
        <p class="muted" id="phase">...</p>
        <div class="big" id="time">--:--</div>
        <p class="muted" id="status">...</p>
        <input id="token" class="token" placeholder="Token" autocomplete="off" />
        <div class="btns">
          <button id="toggle">Start / Pause</button>
          <button id="skip">Skip Phase</button>
        </div>
      </div>
    </div>
    <script>
      const qs = new URLSearchParams(location.search);
      const tokenInput = document.getElementById("token");
      tokenInput.value = qs.get("token") || "";

      async function api(path, method) {
        const res = await fetch(path, { method, headers: { "X-Pomodoro-Token": tokenInput.value } });
        if (!res.ok) throw new Error("HTTP " + res.status);
        return res.json();
      }

      function fmt(sec) {
        const m = Math.floor(sec / 60), s = sec % 60;
        return String(m).padStart(2, "0") + ":" + String(s).padStart(2, "0");
      }

      async function refresh() {
        if (!tokenInput.value) return;
        try {
          const body = await api("/api/state", "GET");
          const st = body.state;
          document.getElementById("phase").textContent = st.phase.replace("_", " ");
          document.getElementById("time").textContent = fmt(st.remainingSeconds);
          document.getElementById("status").textContent = st.isRunning ? "Running" : "Paused";
        } catch (e) {
          document.getElementById("status").textContent = String(e.message || e);
        }
      }

      document.getElementById("toggle").addEventListener("click", async () => {
        try { await api("/api/toggle", "POST"); } finally { await refresh(); }
      });
      document.getElementById("skip").addEventListener("click", async () => {
        try { await api("/api/skip", "POST"); } finally { await refresh(); }
      });

      refresh();
      setInterval(refresh, 1000);
    </script>
  </body>
</html>
`
