package xlsdraw

import (
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/msoleps"
)

// SummaryInformation is the name of the property set stream with the
// document title, author and similar properties.
const SummaryInformation = "SummaryInformation"

// readProperties decodes a property set stream into name/value pairs,
// skipping unnamed and empty properties.
func readProperties(r io.Reader) (props map[string]string, err error) {
	// msoleps panics on strings that lack a terminator.
	defer func() {
		if p := recover(); p != nil {
			props, err = nil, fmt.Errorf("malformed property set: %v", p)
		}
	}()

	ps, err := msoleps.NewFrom(r)
	if err != nil {
		return nil, err
	}
	props = make(map[string]string)
	for _, p := range ps.Property {
		if p == nil || p.Name == "" || p.T == nil {
			continue
		}
		if v := strings.TrimSpace(p.String()); v != "" {
			props[p.Name] = v
		}
	}
	return props, nil
}
