// Package comms exposes a bridge.Host through NATS request/reply. Each
// operation has its own subject below a configurable prefix, e.g.
// "opusbridge.encoder.create" or "opusbridge.decoder.decode".
package comms

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/nats-io/nats.go"
)

// Server answers bridge calls received via NATS.
type Server struct {
	sync.Mutex
	host   *bridge.Host
	prefix string
	sub    *nats.Subscription
}

// NewServer creates a Server for host listening below the subject prefix.
func NewServer(host *bridge.Host, prefix string) (*Server, error) {
	p, err := ValidateSubject(prefix)
	if err != nil {
		return nil, err
	}
	return &Server{
		host:   host,
		prefix: p,
	}, nil
}

// Prefix returns the sanitized subject prefix.
func (s *Server) Prefix() string {
	return s.prefix
}

// Start subscribes to all subjects below the prefix on conn.
func (s *Server) Start(conn *nats.Conn) error {
	s.Lock()
	defer s.Unlock()

	if s.sub != nil {
		return fmt.Errorf("server already started")
	}

	sub, err := conn.Subscribe(s.prefix+".>", s.natsHdlr)
	if err != nil {
		return fmt.Errorf("subscribe: %v", err)
	}
	s.sub = sub
	log.Printf("listening for requests on %s.>\n", s.prefix)
	return nil
}

// Stop unsubscribes from the server's subjects.
func (s *Server) Stop() error {
	s.Lock()
	defer s.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	return err
}

func (s *Server) natsHdlr(msg *nats.Msg) {
	reply := s.Dispatch(msg.Subject, msg.Data)
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		log.Println(err)
	}
}

// Dispatch executes the operation addressed by subject and returns the
// JSON encoded Response.
func (s *Server) Dispatch(subject string, data []byte) []byte {
	res := s.dispatch(subject, data)
	b, err := json.Marshal(res)
	if err != nil {
		log.Println(err)
		return []byte(`{"error":{"kind":"Internal","message":"unable to encode response"}}`)
	}
	return b
}

func (s *Server) dispatch(subject string, data []byte) Response {
	op := strings.TrimPrefix(subject, s.prefix+".")
	if op == subject {
		return errorResponse(fmt.Errorf("subject %s outside of prefix %s", subject, s.prefix))
	}

	if op == "version" {
		return Response{Version: s.host.Version()}
	}

	var req Request
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return errorResponse(fmt.Errorf("invalid JSON: %v", err))
		}
	}
	h := bridge.Handle(req.Handle)

	switch op {
	case "encoder.create":
		handle, err := s.createEncoder(req)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Handle: uint64(handle)}

	case "encoder.set-max-payload-size":
		return sizeResponse(req.Size, s.host.SetMaxPayloadSize(h, req.Size))

	case "encoder.get-max-payload-size":
		size, err := s.host.GetMaxPayloadSize(h)
		return sizeResponse(size, err)

	case "encoder.encode":
		pcm, err := audio.PCMFromBytes(req.Data)
		if err != nil {
			return errorResponse(err)
		}
		packet, err := s.host.Encode(h, pcm)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Data: packet}

	case "encoder.reset":
		return emptyResponse(s.host.ResetEncoderState(h))

	case "encoder.destroy":
		return emptyResponse(s.host.DestroyEncoder(h))

	case "decoder.create":
		handle, err := s.host.CreateDecoder(req.Samplerate, req.Channels)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Handle: uint64(handle)}

	case "decoder.set-frame-size":
		return sizeResponse(req.Size, s.host.SetFrameSize(h, req.Size))

	case "decoder.get-frame-size":
		size, err := s.host.GetFrameSize(h)
		return sizeResponse(size, err)

	case "decoder.decode":
		pcm, err := s.host.Decode(h, req.Data, req.FEC)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Data: audio.PCMToBytes(pcm)}

	case "decoder.reset":
		return emptyResponse(s.host.ResetDecoderState(h))

	case "decoder.destroy":
		return emptyResponse(s.host.DestroyDecoder(h))
	}

	return errorResponse(fmt.Errorf("unknown operation %s", op))
}

// createEncoder prefers the named application mode, which unlike the
// integer representation can select general audio.
func (s *Server) createEncoder(req Request) (bridge.Handle, error) {
	if req.Mode == "" {
		return s.host.CreateEncoder(req.Samplerate, req.Channels, req.Application)
	}
	mode, err := bridge.ParseApplicationMode(req.Mode)
	if err != nil {
		return 0, err
	}
	return s.host.CreateEncoderMode(req.Samplerate, req.Channels, mode)
}

func errorResponse(err error) Response {
	e := &ErrorResponse{Kind: "Internal", Message: err.Error()}
	var bErr *bridge.Error
	if errors.As(err, &bErr) {
		e.Kind = bErr.Kind.String()
		e.Label = string(bErr.Label)
	}
	return Response{Error: e}
}

func sizeResponse(size int, err error) Response {
	if err != nil {
		return errorResponse(err)
	}
	return Response{Size: &size}
}

func emptyResponse(err error) Response {
	if err != nil {
		return errorResponse(err)
	}
	return Response{}
}
