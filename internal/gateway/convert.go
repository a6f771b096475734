package gateway

import (
	"basera/internal/models"

	"google.golang.org/genai"
)

// toContents maps the conversation history onto the wire shape. Turns with
// no mappable parts are dropped rather than sent empty.
func toContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			switch {
			case p.FunctionCall != nil:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					Name: p.FunctionCall.Name,
					Args: p.FunctionCall.Args,
				}})
			case p.FunctionResponse != nil:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					Name:     p.FunctionResponse.Name,
					Response: p.FunctionResponse.Response,
				}})
			case p.Text != "":
				parts = append(parts, &genai.Part{Text: p.Text})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: wireRole(msg.Role), Parts: parts})
	}
	return contents
}

func wireRole(role models.ChatRole) string {
	switch role {
	case models.RoleModel:
		return genai.RoleModel
	case models.RoleTool:
		// Tool results ride on the user role for the Gemini API.
		return genai.RoleUser
	default:
		return genai.RoleUser
	}
}

// toReply parses the response into text and ordered function calls.
func toReply(resp *genai.GenerateContentResponse) *models.ModelReply {
	reply := &models.ModelReply{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		reply.FunctionCalls = append(reply.FunctionCalls, models.FunctionCall{
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	return reply
}
