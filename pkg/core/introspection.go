package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Reviews        int    `json:"reviews"`
	Failures       int    `json:"failures"`
	RemoveComments bool   `json:"remove_comments"`
	PackagerType   string `json:"packager_type"`
	ReviewerType   string `json:"reviewer_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServiceState{
		Reviews:        s.reviews,
		Failures:       s.failures,
		RemoveComments: s.config.RemoveComments,
		PackagerType:   componentType(s.packager, "packager"),
		ReviewerType:   componentType(s.reviewer, "reviewer"),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

func componentType(v any, fallback string) string {
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fallback
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
