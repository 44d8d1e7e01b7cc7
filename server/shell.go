package server

// shellPage hosts the sandboxed preview frame. It reloads the frame for every
// new document announced over /ws and forwards the frame's runtime reports.
const shellPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>previewfs</title>
<style>
html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; }
body { display: flex; flex-direction: column; }
#bar { display: flex; gap: 1rem; align-items: center; padding: .25rem .75rem; font-size: .8rem; background: #f4f4f5; border-bottom: 1px solid #e4e4e7; }
#state[data-state="error"] { color: #b91c1c; }
#state[data-state="ready"] { color: #15803d; }
#errors { margin: 0; padding: 0 .75rem; font-family: ui-monospace, monospace; font-size: .8rem; color: #b91c1c; }
iframe { flex: 1; border: 0; width: 100%; }
</style>
</head>
<body>
<div id="bar"><span id="state" data-state="empty">empty</span><span id="revision"></span></div>
<ul id="errors"></ul>
<iframe id="frame" src="/preview" sandbox="allow-scripts allow-forms allow-modals allow-popups"></iframe>
<script>
const frame = document.getElementById("frame");
const stateEl = document.getElementById("state");
const revEl = document.getElementById("revision");
const errorsEl = document.getElementById("errors");
let socket;
let shown = "";

function show(msg) {
  stateEl.textContent = msg.state;
  stateEl.dataset.state = msg.state;
  revEl.textContent = "rev " + msg.revision;
  errorsEl.replaceChildren(...(msg.errors || []).map((e) => {
    const li = document.createElement("li");
    li.textContent = e.kind + (e.path ? " " + e.path + (e.line ? ":" + e.line + ":" + e.column : "") : "") + ": " + e.message;
    return li;
  }));
  if (msg.type === "document" && msg.documentId !== shown) {
    shown = msg.documentId;
    frame.src = "/preview?document=" + encodeURIComponent(msg.documentId);
  }
}

function connect() {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  socket = new WebSocket(proto + "//" + location.host + "/ws");
  socket.onmessage = (ev) => show(JSON.parse(ev.data));
  socket.onclose = () => setTimeout(connect, 1000);
}

window.addEventListener("message", (ev) => {
  if (ev.source !== frame.contentWindow || !ev.data || !ev.data.type) return;
  if (socket && socket.readyState === WebSocket.OPEN) {
    socket.send(JSON.stringify({ type: ev.data.type, documentId: ev.data.documentId, message: ev.data.message }));
  }
});

connect();
</script>
</body>
</html>
`
