package panel

import (
	"strings"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces & < > " and ' with their entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Render returns the full panel document for a chat log.
func Render(entries []domain.ChatEntry) string {
	var msgs strings.Builder
	for _, e := range entries {
		class, label := "assistant-message", "SvelteKit Expert"
		if e.Sender == domain.SenderUser {
			class, label = "user-message", "You"
		}
		msgs.WriteString(`
      <div class="message ` + class + `">
        <div class="message-header">` + label + `</div>
        <div class="message-content">` + EscapeHTML(e.Text) + `</div>
      </div>`)
	}
	return pageHead + msgs.String() + pageTail
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Svelte &amp; SvelteKit Expert</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; display: flex; flex-direction: column; height: 100vh; }
    .chat-container { flex: 1; overflow-y: auto; padding: 16px; }
    .message { margin-bottom: 16px; padding: 12px; border-radius: 6px; white-space: pre-wrap; }
    .user-message { background-color: #e8f0fe; }
    .assistant-message { background-color: #f3f3f3; }
    .message-header { font-weight: bold; margin-bottom: 8px; }
    .input-container { display: flex; padding: 16px; border-top: 1px solid #ddd; }
    #message-input { flex: 1; padding: 8px; border: 1px solid #ccc; border-radius: 4px; }
    #send-button { margin-left: 8px; border: none; padding: 8px 16px; border-radius: 4px; cursor: pointer; background: #ff3e00; color: #fff; }
  </style>
</head>
<body>
  <div class="chat-container" id="chat-container">`

const pageTail = `
  </div>
  <div class="input-container">
    <input type="text" id="message-input" placeholder="Ask about Svelte or SvelteKit...">
    <button id="send-button">Send</button>
  </div>
  <script>
    const chat = document.getElementById('chat-container');
    chat.scrollTop = chat.scrollHeight;

    function sendMessage() {
      const input = document.getElementById('message-input');
      const text = input.value.trim();
      if (!text) return;
      fetch('/panel/messages', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ text: text })
      });
      input.value = '';
    }

    document.getElementById('send-button').addEventListener('click', sendMessage);
    document.getElementById('message-input').addEventListener('keyup', (e) => {
      if (e.key === 'Enter') sendMessage();
    });

    if (!window.__panelSocket) {
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const ws = new WebSocket(proto + location.host + '/panel/ws');
      ws.onmessage = (ev) => {
        const doc = new DOMParser().parseFromString(ev.data, 'text/html');
        chat.innerHTML = doc.getElementById('chat-container').innerHTML;
        chat.scrollTop = chat.scrollHeight;
      };
      window.__panelSocket = ws;
    }
  </script>
</body>
</html>
`
