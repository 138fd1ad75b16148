package demo

// chatPage connects back to the serving origin, so it works on any port.
const chatPage = `<!DOCTYPE html>
<html lang="en">
  <head>
    <title>Chat Example</title>
  </head>
  <body>
    <h1>WebliChat</h1>
    <div id="d_start">
      <form id="form_username">
        <input type="text" placeholder="username" />
        <input type="submit" value="start" />
      </form>
    </div>
    <div id="d_chat_head" hidden>
      <form id="form_chat">
        <input type="text" placeholder="message" />
        <input type="submit" value="send" />
      </form>
    </div>
    <div id="d_chat"></div>
    <script>
      let ws;

      function append(text) {
        const p = document.createElement("p");
        p.textContent = text;
        document.getElementById("d_chat").appendChild(p);
      }

      function startChatting(event) {
        event.preventDefault();
        const name = event.currentTarget[0].value;

        ws = new WebSocket("wss://" + location.host + "/ws/chat?name=" + encodeURIComponent(name));
        ws.onclose = () => append("connection closed");
        ws.onmessage = (event) => {
          const msg = JSON.parse(event.data);
          if (msg.type === "msg") {
            append(msg.author + ": " + msg.data);
          } else if (msg.type === "join" || msg.type === "leave") {
            append(msg.author + " " + (msg.type === "join" ? "joined" : "left"));
          }
        };

        document.getElementById("d_start").hidden = true;
        document.getElementById("d_chat_head").hidden = false;
        document.getElementById("form_chat").addEventListener("submit", sendMessage);
      }

      function sendMessage(event) {
        event.preventDefault();
        const input = event.currentTarget[0];
        ws.send(input.value);
        input.value = "";
      }

      document.getElementById("form_username").addEventListener("submit", startChatting);
    </script>
  </body>
</html>
`
