package page

import (
	"fmt"

	"github.com/verte-zerg/countup/internal/counter"
)

// DefaultSelector matches elements carrying a data-counter attribute.
const DefaultSelector = "[data-counter]"

// InitOptions configures batch initialization.
type InitOptions struct {
	// Selector picks the counter elements; empty means DefaultSelector.
	Selector string
	// Options apply to every counter and win over data attributes.
	Options counter.Options
}

// InitAll builds one counter per element matching the selector. The first
// configuration error aborts the batch and names the offending element.
func InitAll(doc *Document, opts InitOptions, options ...counter.Option) ([]*counter.Counter, error) {
	selector := opts.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	elements, err := doc.QueryAll(selector)
	if err != nil {
		return nil, err
	}
	counters := make([]*counter.Counter, 0, len(elements))
	for _, el := range elements {
		c, err := counter.New(el, el, opts.Options, options...)
		if err != nil {
			return nil, fmt.Errorf("failed to init counter %s: %w", el.Key(), err)
		}
		counters = append(counters, c)
	}
	return counters, nil
}
