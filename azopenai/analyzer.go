// Package azopenai provides analysis commentary backed by Azure OpenAI chat
// completions.
package azopenai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/fwojciec/webtools"
)

// Ensure Analyzer implements webtools.Analyzer at compile time.
var _ webtools.Analyzer = (*Analyzer)(nil)

// Analyzer implements webtools.Analyzer using an Azure OpenAI deployment.
type Analyzer struct {
	client       *azopenai.Client
	deploymentID string
}

// NewAnalyzer creates an Analyzer authenticated with an API key.
// opts may be nil.
func NewAnalyzer(endpoint, apiKey, deploymentID string, opts *azopenai.ClientOptions) (*Analyzer, error) {
	if endpoint == "" || apiKey == "" || deploymentID == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "azure openai endpoint, key and deployment are required")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), opts)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}
	return &Analyzer{client: client, deploymentID: deploymentID}, nil
}

// Analyze writes a short commentary on a completed tool run.
func (a *Analyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
	if req.Tool.Slug == "" {
		return "", webtools.Errorf(webtools.EINVALID, "tool required")
	}

	resp, err := a.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(a.deploymentID),
		Temperature:    to.Ptr(float32(0.4)),
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestSystemMessage{
				Content: azopenai.NewChatRequestSystemMessageContent(webtools.AnalysisSystemInstruction),
			},
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(webtools.BuildAnalysisPrompt(req)),
			},
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("azure openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", webtools.Errorf(webtools.EINTERNAL, "no completion received from azure openai")
	}
	return strings.TrimSpace(*resp.Choices[0].Message.Content), nil
}
