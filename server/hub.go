package server

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/preview"
	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingEvery  = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

// Message types pushed to live preview clients
const (
	MsgDocument = "document" // A new document was applied
	MsgStatus   = "status"   // Preview state changed without a new document
	MsgPong     = "pong"
	MsgError    = "error"
)

// Message types sent by live preview clients
const (
	MsgPreviewError = "preview-error"
	MsgPreviewReady = "preview-ready"
	MsgPing         = "ping"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Message is pushed to live preview clients
type Message struct {
	Type       string                 `json:"type"`
	DocumentID string                 `json:"documentId,omitempty"`
	Revision   uint64                 `json:"revision"`
	State      preview.State          `json:"state"`
	Errors     []preview.PreviewError `json:"errors,omitempty"`
	Message    string                 `json:"message,omitempty"`
}

type inboundMessage struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type wsClient struct {
	id   uint64
	conn *websocket.Conn
	send chan Message
}

var _ preview.Surface = (*Hub)(nil)

// Hub is the live preview surface: it pushes applied documents to connected
// browser clients and feeds their runtime error reports back to the Previewer
type Hub struct {
	previewer *preview.Previewer
	metrics   *Metrics
	clients   *xsync.Map[uint64, *wsClient]
	lastID    atomic.Uint64
}

// NewHub returns a Hub reporting to previewer. metrics may be nil.
func NewHub(previewer *preview.Previewer, metrics *Metrics) *Hub {
	return &Hub{
		previewer: previewer,
		metrics:   metrics,
		clients:   xsync.NewMap[uint64, *wsClient](),
	}
}

// Render announces doc to every connected client
func (h *Hub) Render(_ context.Context, doc *preview.Document) error {
	h.broadcast(Message{
		Type:       MsgDocument,
		DocumentID: doc.ID,
		Revision:   doc.Revision,
		State:      doc.State,
		Errors:     doc.Errors,
	})
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return h.clients.Size()
}

func (h *Hub) broadcast(msg Message) {
	logger := util.GetLogger("Hub.broadcast")

	h.clients.Range(func(id uint64, c *wsClient) bool {
		select {
		case c.send <- msg:
		default:
			logger.Warn().Uint64("client", id).Str("type", msg.Type).Msg("Client send buffer full, dropping message")
		}
		return true
	})
}

func statusMessage(st preview.Status) Message {
	msg := Message{Type: MsgStatus, Revision: st.Revision, State: st.State, Errors: st.Errors}
	if st.Document != nil {
		msg.DocumentID = st.Document.ID
	}
	return msg
}

func (h *Hub) register(conn *websocket.Conn) *wsClient {
	c := &wsClient{id: h.lastID.Add(1), conn: conn, send: make(chan Message, wsSendBuffer)}
	h.clients.Store(c.id, c)
	if h.metrics != nil {
		h.metrics.clients.Inc()
	}
	return c
}

func (h *Hub) unregister(c *wsClient) {
	if _, ok := h.clients.LoadAndDelete(c.id); ok && h.metrics != nil {
		h.metrics.clients.Dec()
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.clients.Range(func(_ uint64, c *wsClient) bool {
		_ = c.conn.Close()
		return true
	})
}

// ServeWS upgrades the request and serves one live preview client until it
// disconnects. The client first receives the current status.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := util.GetLogger("Hub.ServeWS")

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		logger.Warn().Err(err).Msg("Failed to set read deadline")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	c := h.register(conn)
	defer h.unregister(c)
	logger.Debug().Uint64("client", c.id).Str("remote", r.RemoteAddr).Msg("Preview client connected")

	c.send <- statusMessage(h.previewer.Current())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-c.send:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			logger.Debug().Uint64("client", c.id).Err(err).Msg("Preview client disconnected")
			cancel()
			<-writerDone
			return
		}
		h.handleInbound(c, in)
	}
}

func (h *Hub) handleInbound(c *wsClient, in inboundMessage) {
	logger := util.GetLogger("Hub.handleInbound")

	push := func(msg Message) {
		select {
		case c.send <- msg:
		default:
		}
	}

	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case MsgPreviewError:
		h.ReportRuntimeError(in.DocumentID, in.Message)
	case MsgPreviewReady:
		logger.Debug().Uint64("client", c.id).Str("document", in.DocumentID).Msg("Preview rendered")
		h.Recover(in.DocumentID)
	case MsgPing:
		push(Message{Type: MsgPong})
	case "":
		push(Message{Type: MsgError, Message: "type is required"})
	default:
		push(Message{Type: MsgError, Message: "unknown message type " + in.Type})
	}
}

// ReportRuntimeError records a runtime error for the document and, when it
// was accepted, pushes the new status to every client
func (h *Hub) ReportRuntimeError(docID, message string) bool {
	logger := util.GetLogger("Hub.ReportRuntimeError")

	if !h.previewer.ReportRuntimeError(docID, message) {
		logger.Debug().Str("document", docID).Msg("Ignoring runtime error for stale document")
		return false
	}
	if h.metrics != nil {
		h.metrics.runtimeErrors.Inc()
	}
	h.broadcast(statusMessage(h.previewer.Current()))
	return true
}

// Recover clears a runtime error for the document and pushes the new status
func (h *Hub) Recover(docID string) bool {
	if !h.previewer.Recover(docID) {
		return false
	}
	h.broadcast(statusMessage(h.previewer.Current()))
	return true
}
