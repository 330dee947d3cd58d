package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fncall/registry"
	"github.com/fncall/transport"
)

var ErrUnknownModel = errors.New("unsupported model")

// Selector maps the model identifiers accepted by the front-ends to adapters.
type Selector struct {
	adapters map[string]Adapter
}

func NewSelector(adapters map[string]Adapter) *Selector {
	s := &Selector{adapters: make(map[string]Adapter, len(adapters))}
	for id, a := range adapters {
		s.adapters[strings.ToLower(id)] = a
	}
	return s
}

// Build creates one adapter per configured backend.
func Build(backends map[string]BackendConf, client transport.Interface, reg *registry.Registry) (*Selector, error) {
	adapters := make(map[string]Adapter, len(backends))
	for id, conf := range backends {
		if conf.Endpoint == "" {
			return nil, fmt.Errorf("model %s: missing endpoint", id)
		}
		if conf.Model == "" {
			conf.Model = id
		}
		switch strings.ToLower(conf.Adapter) {
		case KindStructured:
			adapters[id] = NewStructured(client, reg, conf)
		case KindText:
			adapters[id] = NewText(client, reg, conf)
		default:
			return nil, fmt.Errorf("model %s: unknown adapter %q", id, conf.Adapter)
		}
	}
	return NewSelector(adapters), nil
}

func (s *Selector) Select(model string) (Adapter, error) {
	a, ok := s.adapters[strings.ToLower(model)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return a, nil
}

func (s *Selector) Models() []string {
	ids := make([]string, 0, len(s.adapters))
	for id := range s.adapters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
