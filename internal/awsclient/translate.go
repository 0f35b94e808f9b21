package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// Translate converts text to English with automatic source-language
// detection. Callers truncate to the provider limit first.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	out, err := c.translate.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String("auto"),
		TargetLanguageCode: aws.String("en"),
	})
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	return aws.ToString(out.TranslatedText), nil
}
