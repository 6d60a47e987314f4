package models

// LocationKind tags where an object's ciphertext currently lives.
type LocationKind string

const (
	// LocationLocal means the ciphertext is on local disk and has not
	// been durably stored remotely yet.
	LocationLocal LocationKind = "local"
	// LocationRemote means the upload completed and the ciphertext is
	// addressable at a remote URI.
	LocationRemote LocationKind = "remote"
)

// Location is a two-state tagged value: Local(path) or Remote(uri).
// The tag doubles as the object's sync status; there is no separate
// status field anywhere, so recovery can be driven from this value alone.
type Location struct {
	Kind LocationKind
	// Path is the local ciphertext file path. Set only for LocationLocal.
	Path string
	// URI is the durable remote address. Set only for LocationRemote.
	URI string
}

// LocalLocation returns a Location pointing at a ciphertext file on disk.
func LocalLocation(path string) Location {
	return Location{Kind: LocationLocal, Path: path}
}

// RemoteLocation returns a Location pointing at a remote URI.
func RemoteLocation(uri string) Location {
	return Location{Kind: LocationRemote, URI: uri}
}

func (l Location) IsLocal() bool {
	return l.Kind == LocationLocal
}

// Address returns whichever of Path or URI is meaningful for the tag.
func (l Location) Address() string {
	if l.IsLocal() {
		return l.Path
	}
	return l.URI
}
