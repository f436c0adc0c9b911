package game

// UnknownMap is reported when a reply names no map at all.
const UnknownMap = "Unknown"

// ResolveMap returns the reported map name, falling back from MapName to Map and then to UnknownMap.
// A present but empty field still wins over the next one in the chain.
func (s *Status) ResolveMap() string {
	for _, name := range []*string{s.MapName, s.Map} {
		if name != nil {
			return *name
		}
	}

	return UnknownMap
}

// StringPtr is a helper for building a Status literal.
func StringPtr(s string) *string {
	return &s
}
