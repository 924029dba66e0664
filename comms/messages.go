package comms

// Request is the JSON body of every NATS request. Only the fields needed
// by the addressed operation are evaluated. Data carries s16le PCM for
// encode calls and a packet for decode calls (base64 in JSON).
type Request struct {
	Handle      uint64 `json:"handle,omitempty"`
	Samplerate  int    `json:"samplerate,omitempty"`
	Channels    int    `json:"channels,omitempty"`
	Application int    `json:"application,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Size        int    `json:"size,omitempty"`
	Data        []byte `json:"data,omitempty"`
	FEC         bool   `json:"fec,omitempty"`
}

// Response is the JSON reply to a Request.
type Response struct {
	Handle  uint64         `json:"handle,omitempty"`
	Size    *int           `json:"size,omitempty"`
	Data    []byte         `json:"data,omitempty"`
	Version string         `json:"version,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}
