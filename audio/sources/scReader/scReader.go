package scReader

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	ringBuffer "github.com/dh1tw/golang-ring"
	"github.com/dh1tw/opusbridge/audio"
	pa "github.com/gordonklaus/portaudio"
)

// ScReader implements the audio.Source interface and is used to read (record)
// 16 bit audio from a local sound card (e.g. microphone).
type ScReader struct {
	sync.Mutex
	options    Options
	deviceInfo *pa.DeviceInfo
	stream     *pa.Stream
	ring       ringBuffer.Ring
	cb         audio.OnDataCb
	overflows  int
}

var _ audio.Source = (*ScReader)(nil)

// NewScReader returns a soundcard reader which steams audio
// asynchronously from an a local audio device (e.g. a microphone).
func NewScReader(opts ...Option) (*ScReader, error) {

	if err := pa.Initialize(); err != nil {
		return nil, err
	}

	r := &ScReader{
		options: Options{
			HostAPI:         "default",
			DeviceName:      "default",
			Channels:        1,
			Samplerate:      48000,
			FramesPerBuffer: 960,
			Latency:         time.Millisecond * 10,
			RingBufferSize:  50,
		},
		ring: ringBuffer.Ring{},
	}

	for _, option := range opts {
		option(&r.options)
	}

	r.cb = r.options.Callback
	r.ring.SetCapacity(r.options.RingBufferSize)

	hostAPI, err := selectHostAPI(r.options.HostAPI)
	if err != nil {
		pa.Terminate()
		return nil, err
	}

	if r.options.DeviceName == "default" {
		r.deviceInfo = hostAPI.DefaultInputDevice
	} else {
		dev, err := getPaDevice(r.options.DeviceName, hostAPI)
		if err != nil {
			pa.Terminate()
			return nil, err
		}
		r.deviceInfo = dev
	}
	if r.deviceInfo == nil {
		pa.Terminate()
		return nil, fmt.Errorf("no input device available on host api %s", hostAPI.Name)
	}

	// setup Audio Stream
	streamDeviceParam := pa.StreamDeviceParameters{
		Device:   r.deviceInfo,
		Channels: r.options.Channels,
		Latency:  r.options.Latency,
	}

	streamParm := pa.StreamParameters{
		FramesPerBuffer: r.options.FramesPerBuffer,
		Input:           streamDeviceParam,
		SampleRate:      r.options.Samplerate,
	}

	stream, err := pa.OpenStream(streamParm, r.paReadCb)
	if err != nil {
		pa.Terminate()
		return nil,
			fmt.Errorf("unable to open recording audio stream on device %s: %s",
				r.deviceInfo.Name, err)
	}
	r.stream = stream

	log.Printf("input sound device: %s, HostAPI: %s\n", r.deviceInfo.Name, r.deviceInfo.HostApi.Name)
	return r, nil
}

// SetCb sets the callback which will be executed to provide audio buffers.
func (r *ScReader) SetCb(cb audio.OnDataCb) {
	r.Lock()
	defer r.Unlock()
	r.cb = cb
}

// paReadCb is the callback which will be executed each time there is new
// data available on the stream
func (r *ScReader) paReadCb(in []int16,
	iTime pa.StreamCallbackTimeInfo,
	iFlags pa.StreamCallbackFlags) {

	if iFlags == pa.InputOverflow {
		r.Lock()
		r.overflows++
		r.Unlock()
		return // data lost, move on!
	}

	// a deep copy is necessary, since portaudio reuses the slice "in"
	buf := make([]int16, len(in))
	copy(buf, in)

	msg := audio.Msg{
		Data:       buf,
		Samplerate: int(r.options.Samplerate),
		Channels:   r.options.Channels,
		Frames:     len(buf) / r.options.Channels,
	}

	r.Lock()
	r.ring.Enqueue(msg)
	cb := r.cb
	r.Unlock()

	if cb != nil {
		// execute the callback for further processing
		go cb(msg)
	}
}

// Read returns the oldest captured buffer. ok is false if no buffer is
// available.
func (r *ScReader) Read() (msg audio.Msg, ok bool) {
	r.Lock()
	defer r.Unlock()
	if r.ring.Length() == 0 {
		return audio.Msg{}, false
	}
	msg, ok = r.ring.Dequeue().(audio.Msg)
	return msg, ok
}

// Overflows returns the amount of buffers which were dropped by the
// audio device.
func (r *ScReader) Overflows() int {
	r.Lock()
	defer r.Unlock()
	return r.overflows
}

// Start will start streaming audio from a local soundcard device.
func (r *ScReader) Start() error {
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	return r.stream.Start()
}

// Stop stops streaming audio.
func (r *ScReader) Stop() error {
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	return r.stream.Stop()
}

// Close shutsdown properly the soundcard reader.
func (r *ScReader) Close() error {
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	r.stream.Abort()
	err := r.stream.Close()
	r.stream = nil
	pa.Terminate()
	return err
}

func selectHostAPI(name string) (*pa.HostApiInfo, error) {
	if name != "default" {
		return getHostAPI(name)
	}
	if runtime.GOOS == "windows" {
		// WASAPI provides lower latency than the other windows audio apis
		if ha, err := pa.HostApi(pa.WASAPI); err == nil {
			return ha, nil
		}
	}
	ha, err := pa.DefaultHostApi()
	if err != nil {
		return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
	}
	return ha, nil
}

// getHostAPI takes the name of a supported portaudio host api and returns
// the corresponding portaudio hostApiInfo object
func getHostAPI(name string) (*pa.HostApiInfo, error) {

	var hostAPIType pa.HostApiType

	switch strings.ToLower(name) {
	case "directsound":
		hostAPIType = pa.DirectSound
	case "mme":
		hostAPIType = pa.MME
	case "asio":
		hostAPIType = pa.ASIO
	case "coreaudio":
		hostAPIType = pa.CoreAudio
	case "oss":
		hostAPIType = pa.OSS
	case "alsa":
		hostAPIType = pa.ALSA
	case "jack":
		hostAPIType = pa.JACK
	case "wasapi":
		hostAPIType = pa.WASAPI
	default:
		return nil, fmt.Errorf("unknown host api type: %s", name)
	}

	hostAPIInfo, err := pa.HostApi(hostAPIType)
	if err != nil {
		return nil, fmt.Errorf("unable to load host api %s: %s", name, err.Error())
	}

	return hostAPIInfo, nil
}

// getPaDevice checks if the Audio Devices actually exist and
// then returns it
func getPaDevice(name string, hostAPI *pa.HostApiInfo) (*pa.DeviceInfo, error) {
	for _, device := range hostAPI.Devices {
		if strings.EqualFold(device.Name, name) {
			return device, nil
		}
	}
	return nil, fmt.Errorf("unknown audio device '%s'", name)
}
