package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"news-sentiment-go/internal/types"
)

// DetectSentiment scores English text and returns the dominant label
// together with the four scores from the same call.
func (c *Client) DetectSentiment(ctx context.Context, text string) (types.Sentiment, error) {
	out, err := c.comprehend.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCodeEn,
	})
	if err != nil {
		return types.Sentiment{}, fmt.Errorf("detect sentiment: %w", err)
	}

	s := types.Sentiment{Label: string(out.Sentiment)}
	if sc := out.SentimentScore; sc != nil {
		s.Positive = float64(aws.ToFloat32(sc.Positive))
		s.Negative = float64(aws.ToFloat32(sc.Negative))
		s.Neutral = float64(aws.ToFloat32(sc.Neutral))
		s.Mixed = float64(aws.ToFloat32(sc.Mixed))
	}
	return s, nil
}
