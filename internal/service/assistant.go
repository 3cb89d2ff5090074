package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/map-collection/internal/assistant"
	"github.com/pkordes/map-collection/internal/domain"
)

// MaxQuestionLength bounds free-form assistant questions, in characters.
const MaxQuestionLength = 1000

// StopReader is the part of TripStopService the assistant needs.
type StopReader interface {
	Get(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID) (domain.TripStop, error)
}

// AssistantService builds prompts and runs them through the generative model.
type AssistantService struct {
	asker Asker
	stops StopReader
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(asker Asker, stops StopReader) *AssistantService {
	return &AssistantService{asker: asker, stops: stops}
}

// Ask answers a free-form travel question.
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", fmt.Errorf("%w: question must be at most %d characters", domain.ErrValidation, MaxQuestionLength)
	}

	answer, err := s.asker.Ask(ctx, assistant.QuestionPrompt(question))
	if err != nil {
		return "", fmt.Errorf("service.AssistantService.Ask: %w", err)
	}
	return answer, nil
}

// StopInsight describes a trip stop (mode "about") or what is around it
// (mode "nearby"). The stop's coordinates drive the prompt; its name is a hint.
func (s *AssistantService) StopInsight(ctx context.Context, caller string, tripID uuid.UUID, day int, stopID uuid.UUID, mode string) (string, error) {
	if mode == "" {
		mode = assistant.ModeAbout
	}
	if mode != assistant.ModeAbout && mode != assistant.ModeNearby {
		return "", fmt.Errorf("%w: mode must be one of: about nearby", domain.ErrValidation)
	}

	stop, err := s.stops.Get(ctx, caller, tripID, day, stopID)
	if err != nil {
		return "", fmt.Errorf("service.AssistantService.StopInsight: %w", err)
	}

	name := stop.Name
	if name == domain.UnnamedStop {
		name = ""
	}
	answer, err := s.asker.Ask(ctx, assistant.PlacePrompt(mode, name, stop.Lat, stop.Lng))
	if err != nil {
		return "", fmt.Errorf("service.AssistantService.StopInsight: %w", err)
	}
	return answer, nil
}
