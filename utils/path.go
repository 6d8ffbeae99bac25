package utils

import "strings"

// NewPath builds a filesystem path from segments, splitting any embedded '/'.
func NewPath(s ...string) Path {
	p := Path{}
	return p.AddString(s...)
}

// ParsePath splits an absolute or relative slash separated path.
func ParsePath(s string) Path {
	return NewPath(s)
}

// JoinPath joins segments into a normalized absolute path.
func JoinPath(s ...string) string {
	return NewPath(s...).String()
}

// Path is an absolute path on the staging filesystem, one segment per element.
type Path []string

func (p *Path) AddString(s ...string) Path {
	out := append(Path{}, *p...)
	for _, seg := range s {
		for _, part := range strings.Split(seg, "/") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}
