package webserver

func (web *WebServer) routes() {
	web.router.HandleFunc("/api/v1.0/version", web.versionHdlr).Methods("GET")

	web.router.HandleFunc("/api/v1.0/encoders", web.createEncoderHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/encoders/{handle}", web.encoderHdlr).Methods("GET", "DELETE")
	web.router.HandleFunc("/api/v1.0/encoders/{handle}/max-payload-size", web.maxPayloadSizeHdlr).Methods("GET", "PUT")
	web.router.HandleFunc("/api/v1.0/encoders/{handle}/encode", web.encodeHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/encoders/{handle}/reset", web.encoderResetHdlr).Methods("POST")

	web.router.HandleFunc("/api/v1.0/decoders", web.createDecoderHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/decoders/{handle}", web.decoderHdlr).Methods("GET", "DELETE")
	web.router.HandleFunc("/api/v1.0/decoders/{handle}/frame-size", web.frameSizeHdlr).Methods("GET", "PUT")
	web.router.HandleFunc("/api/v1.0/decoders/{handle}/decode", web.decodeHdlr).Methods("POST")
	web.router.HandleFunc("/api/v1.0/decoders/{handle}/reset", web.decoderResetHdlr).Methods("POST")

	web.router.HandleFunc("/ws/encoders/{handle}", web.encoderWsHdlr)
	web.router.HandleFunc("/ws/decoders/{handle}", web.decoderWsHdlr)
}
