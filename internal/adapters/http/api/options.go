package api

// Option configures the Server.
type Option func(*options)

type options struct {
	maxBodyBytes   int64
	maxUploadBytes int64
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithMaxUploadBytes caps CSV uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}
