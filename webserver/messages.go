package webserver

// CreateEncoderRequest is the body of POST /api/v1.0/encoders. Application
// uses the integer representation of the bridge (1 = voip, 2 = low delay);
// Mode ("voip", "audio", "lowdelay") takes precedence if set.
type CreateEncoderRequest struct {
	Samplerate  int    `json:"samplerate"`
	Channels    int    `json:"channels"`
	Application int    `json:"application,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// CreateDecoderRequest is the body of POST /api/v1.0/decoders.
type CreateDecoderRequest struct {
	Samplerate int `json:"samplerate"`
	Channels   int `json:"channels"`
}

// HandleMsg contains the handle of a newly created session.
type HandleMsg struct {
	Handle uint64 `json:"handle"`
}

// SessionMsg describes a live session.
type SessionMsg struct {
	Handle      uint64 `json:"handle"`
	Description string `json:"description"`
}

// SizeMsg carries a maximum payload size or a frame size.
type SizeMsg struct {
	Size *int `json:"size,omitempty"`
}

// VersionMsg contains the version of the native codec library.
type VersionMsg struct {
	Version string `json:"version"`
}

// ErrorMsg is returned with every failed request.
type ErrorMsg struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}
