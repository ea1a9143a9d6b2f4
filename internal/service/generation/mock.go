package generation

import (
	"context"
	"fmt"
	"strings"
)

// MockBackend is a local placeholder implementation for development without
// an API key. It echoes the prompt material instead of calling a model.
type MockBackend struct{}

func (MockBackend) CompleteText(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "numbered list of suggestions") {
		return "1. Add a question to invite comments.\n2. Mention the neighborhood by name.\n3. Close with a clear call to action.", nil
	}

	var sb strings.Builder
	sb.WriteString("[mock completion]\n\n")
	sb.WriteString(prompt)
	return sb.String(), nil
}

func (MockBackend) GenerateImage(_ context.Context, description string) (ImageData, error) {
	return ImageData{
		MIME: "image/png",
		Data: []byte(fmt.Sprintf("mock-image:%s", description)),
	}, nil
}

func (MockBackend) EnhanceImage(_ context.Context, image ImageData, _ string) (ImageData, error) {
	return image, nil
}
