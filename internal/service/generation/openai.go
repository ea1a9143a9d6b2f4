package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Settings configures the hosted-model backend.
type Settings struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
}

// OpenAIBackend implements Backend on the official openai-go SDK: chat
// completions for text, the images API for generation and enhancement.
type OpenAIBackend struct {
	textModel  string
	imageModel string
	opts       []option.RequestOption
}

func NewOpenAIBackend(cfg Settings) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide openai.api_key")
	}
	if cfg.TextModel == "" {
		return nil, errors.New("openai text model is required")
	}
	if cfg.ImageModel == "" {
		return nil, errors.New("openai image model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIBackend{
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		opts:       opts,
	}, nil
}

func (b *OpenAIBackend) CompleteText(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(b.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *OpenAIBackend) GenerateImage(ctx context.Context, description string) (ImageData, error) {
	client := openai.NewClient(b.opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         description,
		Model:          openai.ImageModel(b.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return ImageData{}, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return ImageData{}, errNoImage
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return ImageData{}, fmt.Errorf("decoding generated image: %w", err)
	}

	return ImageData{MIME: "image/png", Data: raw}, nil
}

func (b *OpenAIBackend) EnhanceImage(ctx context.Context, image ImageData, instruction string) (ImageData, error) {
	client := openai.NewClient(b.opts...)

	filename := "source" + extensionFor(image.MIME)
	resp, err := client.Images.Edit(ctx, openai.ImageEditParams{
		Image: openai.ImageEditParamsImageUnion{
			OfFile: openai.File(bytes.NewReader(image.Data), filename, image.MIME),
		},
		Prompt:         instruction,
		Model:          openai.ImageModel(b.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageEditParamsResponseFormatB64JSON,
	})
	if err != nil {
		return ImageData{}, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return ImageData{}, errNoImage
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return ImageData{}, fmt.Errorf("decoding enhanced image: %w", err)
	}

	return ImageData{MIME: "image/png", Data: raw}, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
