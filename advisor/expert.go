package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// maxRounds bounds the function calls served for a single question.
const maxRounds = 16

// Expert is a chat with a model, offered to other models as a function.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	Log         logrus.FieldLogger
	chat        *genai.Chat
}

// Start opens the chat.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("starting %s: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Ask sends parts and serves the function calls of the answers until the
// model replies with content only.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("%s is not started", e.Name)
	}
	for range maxRounds {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from %s", e.Name)
		}
		content := resp.Candidates[0].Content

		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall == nil {
				continue
			}
			if e.Library == nil {
				return nil, fmt.Errorf("%s called %s but has no functions", e.Name, p.FunctionCall.Name)
			}
			calls = append(calls, &genai.Part{FunctionResponse: e.Library(ctx, p.FunctionCall)})
		}
		if len(calls) == 0 {
			return content, nil
		}
		parts = calls
	}
	return nil, errors.New(e.Name + " keeps calling functions")
}

// Declaration declares the expert as a function of one question.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return declare(e.Name, e.Description, "The expert's answer.",
		[2]string{"question", "The question to ask the expert."})
}

// Call asks the question in args.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, err := stringArg(args, "question")
	if err != nil {
		return failure(id, e.Name, err)
	}
	response, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return failure(id, e.Name, fmt.Errorf("asking %s: %w", e.Name, err))
	}
	answer := text(response)
	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{"expert": e.Name, "question": question}).Debug(answer)
	}
	return output(id, e.Name, answer)
}
