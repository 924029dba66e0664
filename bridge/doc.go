// Package bridge drives native codec instances on behalf of a host
// environment which can only hold opaque handles.
//
// A session (EncodeSession or DecodeSession) exclusively owns one native
// codec instance. It moves from Open to Closed exactly once; every
// operation on a closed session fails with KindIllegalState and never
// reaches the native layer. The Host keeps the sessions in a Registry and
// hands out Handles, so that invalid or stale tokens are detected in one
// place:
//
//	host := bridge.NewHost(opus.NewBackend())
//	enc, err := host.CreateEncoder(48000, 1, 1)
//	...
//	packet, err := host.Encode(enc, samples)
//	...
//	host.DestroyEncoder(enc)
//
// All failures are returned as *Error values carrying a Kind and, for
// failures reported by the native codec, the translated Label.
package bridge
