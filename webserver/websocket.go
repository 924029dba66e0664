package webserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/gorilla/websocket"
)

type wsMsg struct {
	msgType int
	data    []byte
}

// wsClient streams the calls of one session over a websocket connection.
// Every binary message from the client is one encode or decode call; the
// reply is a binary message with the result or a text message with an
// ErrorMsg.
type wsClient struct {
	ws        *websocket.Conn
	send      chan wsMsg
	done      chan struct{} // closed when write returns
	process   func([]byte) ([]byte, error)
	closeOnce sync.Once
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		c.ws.Close()
	})
}

func (c *wsClient) write() {
	defer func() {
		close(c.done)
		c.close()
	}()

	for msg := range c.send {
		if err := c.ws.WriteMessage(msg.msgType, msg.data); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *wsClient) read(removeClient func(*wsClient)) {
	defer func() {
		close(c.send)
		removeClient(c)
	}()

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		if msgType != websocket.BinaryMessage {
			if !c.sendError(errors.New("expected binary message")) {
				return
			}
			continue
		}

		res, err := c.process(data)
		if err != nil {
			if !c.sendError(err) {
				return
			}
			var bErr *bridge.Error
			// the session is gone, nothing left to stream
			if errors.As(err, &bErr) && bErr.Kind == bridge.KindIllegalState {
				return
			}
			continue
		}
		if !c.enqueue(wsMsg{websocket.BinaryMessage, res}) {
			return
		}
	}
}

// enqueue hands msg to the writer. It returns false once the writer has
// stopped.
func (c *wsClient) enqueue(msg wsMsg) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

func (c *wsClient) sendError(err error) bool {
	data, mErr := json.Marshal(errorMsg(err))
	if mErr != nil {
		log.Println(mErr)
		return true
	}
	return c.enqueue(wsMsg{websocket.TextMessage, data})
}

func (web *WebServer) serveWs(w http.ResponseWriter, req *http.Request,
	describe func(bridge.Handle) (string, error),
	process func(bridge.Handle, []byte) ([]byte, error)) {

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if _, err := describe(handle); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("unable to open ws for %v\n", req.RemoteAddr)
		return
	}

	client := &wsClient{
		ws:   conn,
		send: make(chan wsMsg, 8),
		done: make(chan struct{}),
		process: func(data []byte) ([]byte, error) {
			return process(handle, data)
		},
	}

	web.addWsClient(client)

	go client.write()
	go client.read(web.removeWsClient)
}

func (web *WebServer) encoderWsHdlr(w http.ResponseWriter, req *http.Request) {
	web.serveWs(w, req, web.host.DescribeEncoder, func(handle bridge.Handle, data []byte) ([]byte, error) {
		pcm, err := audio.PCMFromBytes(data)
		if err != nil {
			return nil, err
		}
		return web.host.Encode(handle, pcm)
	})
}

// an empty binary message requests packet loss concealment
func (web *WebServer) decoderWsHdlr(w http.ResponseWriter, req *http.Request) {
	web.serveWs(w, req, web.host.DescribeDecoder, func(handle bridge.Handle, data []byte) ([]byte, error) {
		pcm, err := web.host.Decode(handle, data, false)
		if err != nil {
			return nil, err
		}
		return audio.PCMToBytes(pcm), nil
	})
}
