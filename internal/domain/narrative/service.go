package narrative

import (
	"context"

	"github.com/rs/zerolog"
)

// Completer sends a prompt to a generative text provider and returns its
// response. Each call is a fully independent request/response exchange.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service turns an analysis request into a narrative: it builds the prompt
// and forwards it to the configured completer. No retries and no timeout
// live here; those are the caller's concern.
type Service struct {
	completer Completer
	logger    zerolog.Logger
}

func NewService(completer Completer, logger zerolog.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Generate blocks until the provider responds or fails. The provider's text
// is returned unchanged; no structure validation happens here.
func (s *Service) Generate(ctx context.Context, req AnalysisRequest) (string, error) {
	prompt := BuildPrompt(req)
	s.logger.Debug().
		Str("patient_id", req.Record.ID).
		Int("prompt_bytes", len(prompt)).
		Msg("requesting narrative")

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return text, nil
}
