package generation

import (
	"fmt"
	"strings"

	"github.com/vitrinalab/vitrina/internal/models"
)

// Prompt templates are data. Swapping the wording here must never require
// touching the orchestrator.

const promptPreamble = `You are an expert social media manager. You will adapt the provided draft content to be appropriate for the specified platform.

Draft content:
%s

Platform: %s

%s

Return only the adapted content. Do not include any introductory or concluding remarks.`

const facebookStyle = `Adapt the content with a narrative, emotional, storytelling style. Speak directly to the local community.`

const instagramStyle = `Adapt the content with a short, visual, direct style. Hashtags and emojis are welcome.`

const wordpressStyle = `Adapt the content into a long, editorialized, structured article with this exact section order:
- A title of at most 60 characters.
- An introduction of 80 to 120 words.
- Body paragraphs of at most 5 lines each.
- A closing call-to-action.`

// EnhanceInstruction is the fixed instruction sent with every image
// enhancement request.
const EnhanceInstruction = `Enhance this image. Improve lighting and color balance to make it look more professional and visually appealing. Do not add or remove any objects from the image.`

const suggestionPrompt = `You are an AI assistant specialized in providing content improvement suggestions for social media posts.

Given the following content and platform, provide a list of suggestions to improve the content for better engagement. The suggestions should be tailored to the specified platform. For example, use hashtags for Instagram. Refrain from hashtags on Facebook.

Platform: %s
Content: %s

Provide a numbered list of suggestions. The suggestions should include alternative phrasing, relevant hashtags, or emojis. Do not add an intro, just the numbered list.`

// PromptFor interpolates the assembled draft into the template for a
// generated platform. Marketplace has no template; its content is a verbatim
// copy of the offering field and asking for its prompt is a programming error.
func PromptFor(platform models.Platform, draft string) (string, error) {
	var style string
	switch platform {
	case models.PlatformFacebook:
		style = facebookStyle
	case models.PlatformInstagram:
		style = instagramStyle
	case models.PlatformWordPress:
		style = wordpressStyle
	default:
		return "", fmt.Errorf("no prompt template for platform %q", platform)
	}
	return fmt.Sprintf(promptPreamble, draft, platform.DisplayName(), style), nil
}

// SuggestionPromptFor builds the improvement-suggestion prompt for content
// that has already been generated.
func SuggestionPromptFor(platform models.Platform, content string) string {
	return fmt.Sprintf(suggestionPrompt, platform.DisplayName(), content)
}

// AssembleDraft concatenates the structured answers into the single labeled
// draft string fed to every platform template. The field order is fixed.
func AssembleDraft(content models.DraftContent) string {
	fields := []struct {
		label string
		value string
	}{
		{"Business or product name", content.BusinessName},
		{"What it offers and its benefits", content.Offering},
		{"What problem it solves", content.Problem},
		{"Origin story", content.Story},
		{"Connection with the territory and community", content.Territory},
		{"What you want people to do (call to action)", content.CallToAction},
		{"Contact information", content.Contact},
	}

	var sb strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		sb.WriteString(f.label)
		sb.WriteString(": ")
		sb.WriteString(f.value)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
