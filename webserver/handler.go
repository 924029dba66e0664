package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/gorilla/mux"
)

// maxBodySize limits request bodies (PCM or packets).
const maxBodySize = 1 << 22

// statusOf maps a bridge failure to an http status code.
func statusOf(err error) int {
	var bErr *bridge.Error
	if !errors.As(err, &bErr) {
		return http.StatusInternalServerError
	}
	switch bErr.Kind {
	case bridge.KindInvalidArgument:
		return http.StatusBadRequest
	case bridge.KindIllegalState:
		return http.StatusConflict
	case bridge.KindIoFailure, bridge.KindRuntimeFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func errorMsg(err error) ErrorMsg {
	msg := ErrorMsg{Error: ErrorDetail{Kind: "Internal", Message: err.Error()}}
	var bErr *bridge.Error
	if errors.As(err, &bErr) {
		msg.Error.Kind = bErr.Kind.String()
		msg.Error.Label = string(bErr.Label)
	}
	return msg
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorMsg(err)); err != nil {
		log.Println(err)
	}
}

func writeBridgeError(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

func handleVar(req *http.Request) (bridge.Handle, error) {
	h, err := strconv.ParseUint(mux.Vars(req)["handle"], 10, 64)
	if err != nil {
		return 0, errors.New("invalid handle")
	}
	return bridge.Handle(h), nil
}

// readBody reads the complete request body. Bodies exceeding maxBodySize
// are rejected with 413 instead of being truncated; ok is false if an
// error has already been written.
func readBody(w http.ResponseWriter, req *http.Request) (body []byte, ok bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodySize))
	if err != nil {
		var mbErr *http.MaxBytesError
		if errors.As(err, &mbErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", mbErr.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return body, true
}

func (web *WebServer) versionHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	writeJSON(w, http.StatusOK, VersionMsg{Version: web.host.Version()})
}

func (web *WebServer) createEncoderHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var msg CreateEncoderRequest
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON"))
		return
	}

	var handle bridge.Handle
	var err error
	if msg.Mode != "" {
		mode, pErr := bridge.ParseApplicationMode(msg.Mode)
		if pErr != nil {
			writeBridgeError(w, pErr)
			return
		}
		handle, err = web.host.CreateEncoderMode(msg.Samplerate, msg.Channels, mode)
	} else {
		handle, err = web.host.CreateEncoder(msg.Samplerate, msg.Channels, msg.Application)
	}
	if err != nil {
		writeBridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, HandleMsg{Handle: uint64(handle)})
}

func (web *WebServer) createDecoderHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var msg CreateDecoderRequest
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON"))
		return
	}

	handle, err := web.host.CreateDecoder(msg.Samplerate, msg.Channels)
	if err != nil {
		writeBridgeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, HandleMsg{Handle: uint64(handle)})
}

func (web *WebServer) sessionHdlr(w http.ResponseWriter, req *http.Request,
	describe func(bridge.Handle) (string, error), destroy func(bridge.Handle) error) {
	defer req.Body.Close()

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	switch req.Method {
	case "GET":
		desc, err := describe(handle)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionMsg{Handle: uint64(handle), Description: desc})

	case "DELETE":
		if err := destroy(handle); err != nil {
			writeBridgeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (web *WebServer) encoderHdlr(w http.ResponseWriter, req *http.Request) {
	web.sessionHdlr(w, req, web.host.DescribeEncoder, web.host.DestroyEncoder)
}

func (web *WebServer) decoderHdlr(w http.ResponseWriter, req *http.Request) {
	web.sessionHdlr(w, req, web.host.DescribeDecoder, web.host.DestroyDecoder)
}

func (web *WebServer) sizeHdlr(w http.ResponseWriter, req *http.Request,
	get func(bridge.Handle) (int, error), set func(bridge.Handle, int) error) {
	defer req.Body.Close()

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	switch req.Method {
	case "GET":
		size, err := get(handle)
		if err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SizeMsg{Size: &size})

	case "PUT":
		var msg SizeMsg
		if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid JSON"))
			return
		}
		if msg.Size == nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid Request"))
			return
		}
		if err := set(handle, *msg.Size); err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (web *WebServer) maxPayloadSizeHdlr(w http.ResponseWriter, req *http.Request) {
	web.sizeHdlr(w, req, web.host.GetMaxPayloadSize, web.host.SetMaxPayloadSize)
}

func (web *WebServer) frameSizeHdlr(w http.ResponseWriter, req *http.Request) {
	web.sizeHdlr(w, req, web.host.GetFrameSize, web.host.SetFrameSize)
}

func (web *WebServer) encodeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}
	pcm, err := audio.PCMFromBytes(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	packet, err := web.host.Encode(handle, pcm)
	if err != nil {
		writeBridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(packet)
}

func (web *WebServer) decodeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	fec := false
	if v := req.URL.Query().Get("fec"); v != "" {
		fec, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid fec parameter"))
			return
		}
	}

	packet, ok := readBody(w, req)
	if !ok {
		return
	}

	pcm, err := web.host.Decode(handle, packet, fec)
	if err != nil {
		writeBridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(audio.PCMToBytes(pcm))
}

func (web *WebServer) resetHdlr(w http.ResponseWriter, req *http.Request, reset func(bridge.Handle) error) {
	defer req.Body.Close()

	handle, err := handleVar(req)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := reset(handle); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (web *WebServer) encoderResetHdlr(w http.ResponseWriter, req *http.Request) {
	web.resetHdlr(w, req, web.host.ResetEncoderState)
}

func (web *WebServer) decoderResetHdlr(w http.ResponseWriter, req *http.Request) {
	web.resetHdlr(w, req, web.host.ResetDecoderState)
}
