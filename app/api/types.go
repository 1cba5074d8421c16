package api

import (
	"context"
	"time"

	"github.com/haruq/dailybrief/app/chat"
	"github.com/haruq/dailybrief/app/digest"
)

type AnswererInterface interface {
	Answer(ctx context.Context, digestMarkdown, message, history string) string
}

var _ AnswererInterface = (*chat.Answerer)(nil)

type Handler struct {
	store    *digest.Store
	answerer AnswererInterface
	sources  []string
	location *time.Location
}

type ChatRequest struct {
	Message  string `json:"message" binding:"required"`
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
	Date     string `json:"date"`
	History  string `json:"history"`
}
