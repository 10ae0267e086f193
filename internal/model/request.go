package model

// RequestKind describes how a dependency is requested.
type RequestKind string

const (
	// RequestInstance asks for the value itself, constructed eagerly.
	RequestInstance RequestKind = "instance"

	// RequestProvider asks for a factory that yields a value on every call.
	RequestProvider RequestKind = "provider"

	// RequestLazy asks for a handle that constructs the value on first access.
	RequestLazy RequestKind = "lazy"

	// RequestProviderOfLazy asks for a provider of lazy handles.
	RequestProviderOfLazy RequestKind = "provider_of_lazy"
)

// Valid reports whether k is a known request kind. The empty kind is treated as
// RequestInstance.
func (k RequestKind) Valid() bool {
	switch k {
	case "", RequestInstance, RequestProvider, RequestLazy, RequestProviderOfLazy:
		return true
	}
	return false
}

// Deferred reports whether the request defers construction of its target.
func (k RequestKind) Deferred() bool {
	switch k {
	case RequestProvider, RequestLazy, RequestProviderOfLazy:
		return true
	}
	return false
}

// Normalize maps the empty kind to RequestInstance.
func (k RequestKind) Normalize() RequestKind {
	if k == "" {
		return RequestInstance
	}
	return k
}

// DependencyRequest is a request for the value bound to Key.
type DependencyRequest struct {
	Key      Key         `json:"key" yaml:"key"`
	Kind     RequestKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Optional bool        `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Instance requests key as a plain, eagerly constructed value.
func Instance(key Key) DependencyRequest {
	return DependencyRequest{Key: key, Kind: RequestInstance}
}

// Provider requests a provider of key.
func Provider(key Key) DependencyRequest {
	return DependencyRequest{Key: key, Kind: RequestProvider}
}

// Lazy requests a lazy handle to key.
func Lazy(key Key) DependencyRequest {
	return DependencyRequest{Key: key, Kind: RequestLazy}
}

// ProviderOfLazy requests a provider of lazy handles to key.
func ProviderOfLazy(key Key) DependencyRequest {
	return DependencyRequest{Key: key, Kind: RequestProviderOfLazy}
}

// AsOptional returns a copy of r that resolves to an absent value when nothing
// binds its key.
func (r DependencyRequest) AsOptional() DependencyRequest {
	r.Optional = true
	return r
}

// Deferred reports whether the request defers construction.
func (r DependencyRequest) Deferred() bool {
	return r.Kind.Deferred()
}

func (r DependencyRequest) String() string {
	s := r.Key.String()
	if kind := r.Kind.Normalize(); kind != RequestInstance {
		s = string(kind) + "<" + s + ">"
	}
	if r.Optional {
		s = "optional<" + s + ">"
	}
	return s
}
