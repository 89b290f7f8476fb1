package flatten

const (
	DefaultRoot      = "root"
	DefaultSeparator = '_'
	DefaultMaxDepth  = 10000
)

type options struct {
	root         string
	separator    byte
	pathCapacity int
	maxDepth     int
}

// Option configures an Engine.
type Option func(*options)

// WithRoot sets the name every path starts with.
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithSeparator sets the byte placed between path segments.
func WithSeparator(sep byte) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithPathCapacity preallocates the path buffer. Capacity never affects output.
func WithPathCapacity(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.pathCapacity = n
		}
	}
}

// WithMaxDepth bounds container nesting. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

func defaultOptions() options {
	return options{
		root:         DefaultRoot,
		separator:    DefaultSeparator,
		pathCapacity: 64,
		maxDepth:     DefaultMaxDepth,
	}
}
