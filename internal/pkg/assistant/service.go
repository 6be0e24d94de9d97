// Package assistant answers dealership SEO questions through a
// Mistral-compatible completion API and keeps the conversation history.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/dealerseo/seodash/app/models"
	"github.com/dealerseo/seodash/app/repository"
	"github.com/dealerseo/seodash/internal/pkg/access"
	"github.com/dealerseo/seodash/internal/pkg/apperror"
	"github.com/dealerseo/seodash/internal/pkg/quota"
)

const (
	HistoryLimit = 50
	contextTurns = 10
	maxQuestion  = 4000
)

const systemPrompt = `You are the SEO assistant of an automotive dealership dashboard.
Answer briefly and concretely. Deliverables are landing pages, blog posts,
Google Business Profile posts and on-site improvements, delivered monthly
against the dealership's package quota.`

// Completer produces an assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ProgressSource returns the quota progress of a dealership.
type ProgressSource interface {
	DealershipProgress(ctx context.Context, dealershipID string) (*quota.DealershipProgress, error)
}

type Service struct {
	chats     repository.ChatRepository
	completer Completer
	progress  ProgressSource
}

// NewService returns a service whose Chat answers 503 when completer is nil.
func NewService(chats repository.ChatRepository, completer Completer, progress ProgressSource) *Service {
	return &Service{chats: chats, completer: completer, progress: progress}
}

// Chat stores the question, asks the model and stores the answer.
func (s *Service) Chat(ctx context.Context, actor access.Actor, question string) (*models.ChatMessage, error) {
	if s.completer == nil {
		return nil, apperror.Unavailable("Assistant is not configured")
	}
	question = strings.TrimSpace(question)
	if question == "" || len(question) > maxQuestion {
		return nil, apperror.Validation("Invalid message", map[string]string{"message": "required"})
	}

	history, err := s.chats.ListRecentByUser(actor.UserID, contextTurns)
	if err != nil {
		return nil, apperror.Internal("load chat history", err)
	}

	messages := []Message{{Role: "system", Content: s.systemPrompt(ctx, actor)}}
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: models.CHAT_ROLE_USER, Content: question})

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		log.Warnf("[Assistant] completion failed for user %s: %v", actor.UserID, err)
		return nil, apperror.Wrap(apperror.KindUnavailable, "Assistant is unavailable", err)
	}

	// A turn is stored only once it has a reply, so a failed completion
	// leaves no unanswered question in the history.
	asked := &models.ChatMessage{
		UserID:       actor.UserID,
		DealershipID: actor.DealershipID,
		Role:         models.CHAT_ROLE_USER,
		Content:      question,
	}
	answer := &models.ChatMessage{
		UserID:       actor.UserID,
		DealershipID: actor.DealershipID,
		Role:         models.CHAT_ROLE_ASSISTANT,
		Content:      reply,
	}
	if err := s.chats.Create(asked, answer); err != nil {
		return nil, apperror.Internal("store chat turn", err)
	}
	return answer, nil
}

// History returns the caller's most recent messages, oldest first.
func (s *Service) History(_ context.Context, actor access.Actor) ([]models.ChatMessage, error) {
	list, err := s.chats.ListRecentByUser(actor.UserID, HistoryLimit)
	if err != nil {
		return nil, apperror.Internal("load chat history", err)
	}
	return list, nil
}

func (s *Service) systemPrompt(ctx context.Context, actor access.Actor) string {
	if s.progress == nil || actor.DealershipID == "" {
		return systemPrompt
	}
	p, err := s.progress.DealershipProgress(ctx, actor.DealershipID)
	if err != nil {
		log.Warnf("[Assistant] progress unavailable for dealership %s: %v", actor.DealershipID, err)
		return systemPrompt
	}
	b := p.Progress.Breakdown
	return fmt.Sprintf("%s\n\nCurrent package: %s. This period: %d of %d tasks completed, %d active. "+
		"Pages %d/%d, blogs %d/%d, GBP posts %d/%d, improvements %d/%d.",
		systemPrompt, p.PackageType, p.Progress.CompletedTasks, p.Progress.TotalTasks, p.Progress.ActiveTasks,
		b.Pages.Completed, b.Pages.Total, b.Blogs.Completed, b.Blogs.Total,
		b.GBPPosts.Completed, b.GBPPosts.Total, b.Improvements.Completed, b.Improvements.Total)
}
